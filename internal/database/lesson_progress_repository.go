package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/pkg/models"
)

// LessonProgressRepository handles database operations for per
// (student, lesson) completion state.
type LessonProgressRepository struct{}

// NewLessonProgressRepository creates a new repository instance
func NewLessonProgressRepository() *LessonProgressRepository {
	return &LessonProgressRepository{}
}

// Get returns progress for a (student, lesson) pair, or nil when the
// student has not started the lesson.
func (r *LessonProgressRepository) Get(ctx context.Context, studentID, lessonID int64) (*models.LessonProgress, error) {
	return r.get(ctx, DB, studentID, lessonID, false)
}

// GetForUpdate fetches progress inside tx with a row lock
func (r *LessonProgressRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, studentID, lessonID int64) (*models.LessonProgress, error) {
	return r.get(ctx, tx, studentID, lessonID, true)
}

func (r *LessonProgressRepository) get(ctx context.Context, q sqlx.ExtContext, studentID, lessonID int64, forUpdate bool) (*models.LessonProgress, error) {
	query := "SELECT * FROM lesson_progress WHERE student_id = $1 AND lesson_id = $2"
	if forUpdate && q.DriverName() == "postgres" {
		query += " FOR UPDATE"
	}
	var progress models.LessonProgress
	err := sqlx.GetContext(ctx, q, &progress, query, studentID, lessonID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapTransient("get lesson progress", err)
	}
	return &progress, nil
}

// Upsert writes the progress row keyed on (student_id, lesson_id).
// CompletionDate is written as-is; the roller owns the stamp-once rule.
func (r *LessonProgressRepository) Upsert(ctx context.Context, q sqlx.ExtContext, progress *models.LessonProgress) error {
	if q.DriverName() == "postgres" {
		err := q.QueryRowxContext(ctx,
			`INSERT INTO lesson_progress (
				student_id, lesson_id, lesson_completed, quiz_completed, start_date, completion_date
			) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (student_id, lesson_id) DO UPDATE SET
				lesson_completed = EXCLUDED.lesson_completed,
				quiz_completed = EXCLUDED.quiz_completed,
				completion_date = EXCLUDED.completion_date
			RETURNING id, start_date`,
			progress.StudentID, progress.LessonID, progress.LessonCompleted,
			progress.QuizCompleted, progress.StartDate, progress.CompletionDate,
		).Scan(&progress.ID, &progress.StartDate)
		if err != nil {
			return wrapTransient("upsert lesson progress", err)
		}
		return nil
	}

	var existingID int64
	err := q.QueryRowxContext(ctx,
		"SELECT id FROM lesson_progress WHERE student_id = $1 AND lesson_id = $2",
		progress.StudentID, progress.LessonID,
	).Scan(&existingID)
	switch {
	case err == nil:
		progress.ID = existingID
		_, err = q.ExecContext(ctx,
			`UPDATE lesson_progress SET
				lesson_completed = $1, quiz_completed = $2, completion_date = $3
			WHERE id = $4`,
			progress.LessonCompleted, progress.QuizCompleted, progress.CompletionDate, existingID,
		)
		if err != nil {
			return wrapTransient("update lesson progress", err)
		}
		return nil
	case errors.Is(err, sql.ErrNoRows):
		res, err := q.ExecContext(ctx,
			`INSERT INTO lesson_progress (
				student_id, lesson_id, lesson_completed, quiz_completed, start_date, completion_date
			) VALUES ($1, $2, $3, $4, $5, $6)`,
			progress.StudentID, progress.LessonID, progress.LessonCompleted,
			progress.QuizCompleted, progress.StartDate, progress.CompletionDate,
		)
		if err != nil {
			return wrapTransient("insert lesson progress", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		progress.ID = id
		return nil
	default:
		return wrapTransient("probe lesson progress", err)
	}
}
