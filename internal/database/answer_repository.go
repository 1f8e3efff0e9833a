package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/pkg/models"
)

// AnswerRepository handles database operations for the append-only
// answers log. Answers are never updated or deleted.
type AnswerRepository struct{}

// NewAnswerRepository creates a new repository instance
func NewAnswerRepository() *AnswerRepository {
	return &AnswerRepository{}
}

// Create appends one answer row. It accepts either the shared
// connection or an open transaction so the recorder can apply the
// append together with the schedule advance.
func (r *AnswerRepository) Create(ctx context.Context, q sqlx.ExtContext, answer *models.Answer) error {
	if q.DriverName() == "postgres" {
		return q.QueryRowxContext(ctx,
			`INSERT INTO answers (quiz_attempt_id, student_id, question_id, option_id, is_correct, reviewed_at, next_review)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			answer.AttemptID, answer.StudentID, answer.QuestionID, answer.OptionID,
			answer.IsCorrect, answer.ReviewedAt, answer.NextReview,
		).Scan(&answer.ID)
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO answers (quiz_attempt_id, student_id, question_id, option_id, is_correct, reviewed_at, next_review)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		answer.AttemptID, answer.StudentID, answer.QuestionID, answer.OptionID,
		answer.IsCorrect, answer.ReviewedAt, answer.NextReview,
	)
	if err != nil {
		return fmt.Errorf("failed to append answer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	answer.ID = id
	return nil
}

// GetByStudentAndQuestion returns a student's answers to one question,
// oldest first. Used by analytics and by schedule replay checks.
func (r *AnswerRepository) GetByStudentAndQuestion(ctx context.Context, studentID, questionID int64) ([]models.Answer, error) {
	var answers []models.Answer
	err := DB.SelectContext(ctx, &answers,
		"SELECT * FROM answers WHERE student_id = $1 AND question_id = $2 ORDER BY reviewed_at, id",
		studentID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	return answers, nil
}

// GetByAttempt returns the answers recorded for one quiz attempt
func (r *AnswerRepository) GetByAttempt(ctx context.Context, attemptID int64) ([]models.Answer, error) {
	var answers []models.Answer
	err := DB.SelectContext(ctx, &answers,
		"SELECT * FROM answers WHERE quiz_attempt_id = $1 ORDER BY id", attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt answers: %w", err)
	}
	return answers, nil
}
