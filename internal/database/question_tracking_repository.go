package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/pkg/models"
)

// QuestionTrackingRepository handles database operations for the per
// (student, question) lifetime counters.
type QuestionTrackingRepository struct{}

// NewQuestionTrackingRepository creates a new repository instance
func NewQuestionTrackingRepository() *QuestionTrackingRepository {
	return &QuestionTrackingRepository{}
}

// Get returns tracking counters for a (student, question) pair, or nil
// when the student has never answered the question.
func (r *QuestionTrackingRepository) Get(ctx context.Context, studentID, questionID int64) (*models.QuestionTracking, error) {
	var tracking models.QuestionTracking
	err := DB.GetContext(ctx, &tracking,
		"SELECT * FROM question_tracking WHERE student_id = $1 AND question_id = $2",
		studentID, questionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question tracking: %w", err)
	}
	return &tracking, nil
}

// Apply folds one outcome into the counters. It runs inside the same
// transaction as the schedule advance for the pair, so the two rows
// are never observable half-applied.
func (r *QuestionTrackingRepository) Apply(ctx context.Context, q sqlx.ExtContext, studentID, questionID int64, correct bool, answeredAt, nextReview time.Time) error {
	correctInc := 0
	if correct {
		correctInc = 1
	}
	isDue := !nextReview.After(answeredAt)

	if q.DriverName() == "postgres" {
		_, err := q.ExecContext(ctx,
			`INSERT INTO question_tracking (
				student_id, question_id, times_answered, times_answered_correctly,
				last_answered, next_review, is_due
			) VALUES ($1, $2, 1, $3, $4, $5, $6)
			ON CONFLICT (student_id, question_id) DO UPDATE SET
				times_answered = question_tracking.times_answered + 1,
				times_answered_correctly = question_tracking.times_answered_correctly + EXCLUDED.times_answered_correctly,
				last_answered = EXCLUDED.last_answered,
				next_review = EXCLUDED.next_review,
				is_due = EXCLUDED.is_due`,
			studentID, questionID, correctInc, answeredAt, nextReview, isDue,
		)
		if err != nil {
			return wrapTransient("apply question tracking", err)
		}
		return nil
	}

	res, err := q.ExecContext(ctx,
		`UPDATE question_tracking SET
			times_answered = times_answered + 1,
			times_answered_correctly = times_answered_correctly + $1,
			last_answered = $2,
			next_review = $3,
			is_due = $4
		WHERE student_id = $5 AND question_id = $6`,
		correctInc, answeredAt, nextReview, isDue, studentID, questionID,
	)
	if err != nil {
		return wrapTransient("apply question tracking", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check tracking update: %w", err)
	}
	if affected == 0 {
		_, err = q.ExecContext(ctx,
			`INSERT INTO question_tracking (
				student_id, question_id, times_answered, times_answered_correctly,
				last_answered, next_review, is_due
			) VALUES ($1, $2, 1, $3, $4, $5, $6)`,
			studentID, questionID, correctInc, answeredAt, nextReview, isDue,
		)
		if err != nil {
			return wrapTransient("insert question tracking", err)
		}
	}
	return nil
}

// RefreshDueFlags re-derives is_due from next_review for every
// tracking row. Run periodically; the flag is a cache of
// next_review <= now, never authoritative.
func (r *QuestionTrackingRepository) RefreshDueFlags(ctx context.Context, now time.Time) (int64, error) {
	res, err := DB.ExecContext(ctx,
		`UPDATE question_tracking SET is_due = (next_review IS NOT NULL AND next_review <= $1)`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh due flags: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count refreshed rows: %w", err)
	}
	return affected, nil
}
