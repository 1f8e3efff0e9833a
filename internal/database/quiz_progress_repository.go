package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/pkg/models"
)

// QuizProgressRepository handles database operations for the rolling
// per (student, quiz) aggregate.
type QuizProgressRepository struct{}

// NewQuizProgressRepository creates a new repository instance
func NewQuizProgressRepository() *QuizProgressRepository {
	return &QuizProgressRepository{}
}

// Get returns progress for a (student, quiz) pair, or nil when the
// student has not attempted the quiz.
func (r *QuizProgressRepository) Get(ctx context.Context, studentID, quizID int64) (*models.QuizProgress, error) {
	return r.get(ctx, DB, studentID, quizID, false)
}

// GetForUpdate fetches progress inside tx with a row lock. Repeat
// submissions of the same quiz serialize on the locked row; a first
// submission has no row to lock yet and is instead covered by the
// transaction isolation level and the attempt number unique key.
func (r *QuizProgressRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, studentID, quizID int64) (*models.QuizProgress, error) {
	return r.get(ctx, tx, studentID, quizID, true)
}

func (r *QuizProgressRepository) get(ctx context.Context, q sqlx.ExtContext, studentID, quizID int64, forUpdate bool) (*models.QuizProgress, error) {
	query := "SELECT * FROM quiz_progress WHERE student_id = $1 AND quiz_id = $2"
	if forUpdate && q.DriverName() == "postgres" {
		query += " FOR UPDATE"
	}
	var progress models.QuizProgress
	err := sqlx.GetContext(ctx, q, &progress, query, studentID, quizID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapTransient("get quiz progress", err)
	}
	return &progress, nil
}

// Upsert writes the progress row keyed on (student_id, quiz_id)
func (r *QuizProgressRepository) Upsert(ctx context.Context, q sqlx.ExtContext, progress *models.QuizProgress) error {
	if q.DriverName() == "postgres" {
		err := q.QueryRowxContext(ctx,
			`INSERT INTO quiz_progress (
				student_id, quiz_id, score, attempts, time_spent, last_completed, accuracy_rate
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (student_id, quiz_id) DO UPDATE SET
				score = EXCLUDED.score,
				attempts = EXCLUDED.attempts,
				time_spent = EXCLUDED.time_spent,
				last_completed = EXCLUDED.last_completed,
				accuracy_rate = EXCLUDED.accuracy_rate
			RETURNING id`,
			progress.StudentID, progress.QuizID, progress.Score, progress.Attempts,
			progress.TimeSpent, progress.LastCompleted, progress.AccuracyRate,
		).Scan(&progress.ID)
		if err != nil {
			return wrapTransient("upsert quiz progress", err)
		}
		return nil
	}

	var existingID int64
	err := q.QueryRowxContext(ctx,
		"SELECT id FROM quiz_progress WHERE student_id = $1 AND quiz_id = $2",
		progress.StudentID, progress.QuizID,
	).Scan(&existingID)
	switch {
	case err == nil:
		progress.ID = existingID
		_, err = q.ExecContext(ctx,
			`UPDATE quiz_progress SET
				score = $1, attempts = $2, time_spent = $3, last_completed = $4, accuracy_rate = $5
			WHERE id = $6`,
			progress.Score, progress.Attempts, progress.TimeSpent,
			progress.LastCompleted, progress.AccuracyRate, existingID,
		)
		if err != nil {
			return wrapTransient("update quiz progress", err)
		}
		return nil
	case errors.Is(err, sql.ErrNoRows):
		res, err := q.ExecContext(ctx,
			`INSERT INTO quiz_progress (
				student_id, quiz_id, score, attempts, time_spent, last_completed, accuracy_rate
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			progress.StudentID, progress.QuizID, progress.Score, progress.Attempts,
			progress.TimeSpent, progress.LastCompleted, progress.AccuracyRate,
		)
		if err != nil {
			return wrapTransient("insert quiz progress", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		progress.ID = id
		return nil
	default:
		return wrapTransient("probe quiz progress", err)
	}
}
