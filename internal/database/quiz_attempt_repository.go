package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/pkg/errs"
	"github.com/example/studybot/pkg/models"
)

// QuizAttemptRepository handles database operations for scored quiz
// attempts. Attempt rows are immutable once written.
type QuizAttemptRepository struct{}

// NewQuizAttemptRepository creates a new repository instance
func NewQuizAttemptRepository() *QuizAttemptRepository {
	return &QuizAttemptRepository{}
}

// Count returns how many attempts a student has recorded for a quiz
func (r *QuizAttemptRepository) Count(ctx context.Context, q sqlx.ExtContext, studentID, quizID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count,
		"SELECT COUNT(*) FROM quiz_attempts WHERE student_id = $1 AND quiz_id = $2",
		studentID, quizID)
	if err != nil {
		return 0, wrapTransient("count quiz attempts", err)
	}
	return count, nil
}

// Create inserts one attempt row. Two concurrent submissions can race
// to the same attempt number; that collision is surfaced as transient
// so the retry recounts and takes the next number, or the quota error.
func (r *QuizAttemptRepository) Create(ctx context.Context, q sqlx.ExtContext, attempt *models.QuizAttempt) error {
	if q.DriverName() == "postgres" {
		err := q.QueryRowxContext(ctx,
			`INSERT INTO quiz_attempts (student_id, quiz_id, attempt_number, score, completion_date)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			attempt.StudentID, attempt.QuizID, attempt.AttemptNumber, attempt.Score, attempt.CompletionDate,
		).Scan(&attempt.ID)
		if err != nil {
			return wrapAttemptInsert(err)
		}
		return nil
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO quiz_attempts (student_id, quiz_id, attempt_number, score, completion_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		attempt.StudentID, attempt.QuizID, attempt.AttemptNumber, attempt.Score, attempt.CompletionDate,
	)
	if err != nil {
		return wrapAttemptInsert(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	attempt.ID = id
	return nil
}

func wrapAttemptInsert(err error) error {
	if isUniqueViolation(err) {
		return &errs.TransientStorageError{Op: "create quiz attempt", Err: err}
	}
	return wrapTransient("create quiz attempt", err)
}

// GetByStudentAndQuiz returns a student's attempts for one quiz in
// attempt order
func (r *QuizAttemptRepository) GetByStudentAndQuiz(ctx context.Context, studentID, quizID int64) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := DB.SelectContext(ctx, &attempts,
		"SELECT * FROM quiz_attempts WHERE student_id = $1 AND quiz_id = $2 ORDER BY attempt_number",
		studentID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz attempts: %w", err)
	}
	return attempts, nil
}

// AttemptStats aggregates a student's attempts for the user tracking
// rollup rebuild.
type AttemptStats struct {
	TotalCompleted int     `db:"total_completed"`
	AverageScore   float64 `db:"average_score"`
}

// StatsForStudent returns attempt aggregates across all quizzes
func (r *QuizAttemptRepository) StatsForStudent(ctx context.Context, studentID int64) (*AttemptStats, error) {
	var stats AttemptStats
	err := DB.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS total_completed, COALESCE(AVG(score), 0) AS average_score
		FROM quiz_attempts WHERE student_id = $1
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt stats: %w", err)
	}
	return &stats, nil
}

// LastQuizID returns the quiz of the student's most recent attempt, or
// zero when the student has none.
func (r *QuizAttemptRepository) LastQuizID(ctx context.Context, studentID int64) (int64, error) {
	var quizID int64
	err := DB.GetContext(ctx, &quizID, `
		SELECT quiz_id FROM quiz_attempts
		WHERE student_id = $1
		ORDER BY completion_date DESC, id DESC
		LIMIT 1
	`, studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get last quiz: %w", err)
	}
	return quizID, nil
}
