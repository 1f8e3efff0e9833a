package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/pkg/models"
)

// UserTrackingRepository handles the per-student denormalized rollup.
// The row is a cache over attempts, schedules and study history and is
// always recomputable from them.
type UserTrackingRepository struct{}

// NewUserTrackingRepository creates a new repository instance
func NewUserTrackingRepository() *UserTrackingRepository {
	return &UserTrackingRepository{}
}

// Get returns the rollup for a student, or nil when none has been
// computed yet.
func (r *UserTrackingRepository) Get(ctx context.Context, studentID int64) (*models.UserTracking, error) {
	var tracking models.UserTracking
	err := DB.GetContext(ctx, &tracking,
		"SELECT * FROM user_tracking WHERE student_id = $1", studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user tracking: %w", err)
	}
	return &tracking, nil
}

// Upsert writes the rollup row keyed on student_id
func (r *UserTrackingRepository) Upsert(ctx context.Context, q sqlx.ExtContext, tracking *models.UserTracking) error {
	if q.DriverName() == "postgres" {
		err := q.QueryRowxContext(ctx,
			`INSERT INTO user_tracking (
				student_id, lesson_id, last_quiz_id, total_quizzes_completed, average_score,
				last_activity, next_repetition, next_question_id, total_time_spent
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (student_id) DO UPDATE SET
				lesson_id = EXCLUDED.lesson_id,
				last_quiz_id = EXCLUDED.last_quiz_id,
				total_quizzes_completed = EXCLUDED.total_quizzes_completed,
				average_score = EXCLUDED.average_score,
				last_activity = EXCLUDED.last_activity,
				next_repetition = EXCLUDED.next_repetition,
				next_question_id = EXCLUDED.next_question_id,
				total_time_spent = EXCLUDED.total_time_spent,
				updated_at = NOW()
			RETURNING id`,
			tracking.StudentID, tracking.LessonID, tracking.LastQuizID,
			tracking.TotalQuizzesCompleted, tracking.AverageScore, tracking.LastActivity,
			tracking.NextRepetition, tracking.NextQuestionID, tracking.TotalTimeSpent,
		).Scan(&tracking.ID)
		if err != nil {
			return wrapTransient("upsert user tracking", err)
		}
		return nil
	}

	var existingID int64
	err := q.QueryRowxContext(ctx,
		"SELECT id FROM user_tracking WHERE student_id = $1", tracking.StudentID,
	).Scan(&existingID)
	switch {
	case err == nil:
		tracking.ID = existingID
		_, err = q.ExecContext(ctx,
			`UPDATE user_tracking SET
				lesson_id = $1, last_quiz_id = $2, total_quizzes_completed = $3,
				average_score = $4, last_activity = $5, next_repetition = $6,
				next_question_id = $7, total_time_spent = $8, updated_at = CURRENT_TIMESTAMP
			WHERE id = $9`,
			tracking.LessonID, tracking.LastQuizID, tracking.TotalQuizzesCompleted,
			tracking.AverageScore, tracking.LastActivity, tracking.NextRepetition,
			tracking.NextQuestionID, tracking.TotalTimeSpent, existingID,
		)
		if err != nil {
			return wrapTransient("update user tracking", err)
		}
		return nil
	case errors.Is(err, sql.ErrNoRows):
		res, err := q.ExecContext(ctx,
			`INSERT INTO user_tracking (
				student_id, lesson_id, last_quiz_id, total_quizzes_completed, average_score,
				last_activity, next_repetition, next_question_id, total_time_spent
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			tracking.StudentID, tracking.LessonID, tracking.LastQuizID,
			tracking.TotalQuizzesCompleted, tracking.AverageScore, tracking.LastActivity,
			tracking.NextRepetition, tracking.NextQuestionID, tracking.TotalTimeSpent,
		)
		if err != nil {
			return wrapTransient("insert user tracking", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		tracking.ID = id
		return nil
	default:
		return wrapTransient("probe user tracking", err)
	}
}
