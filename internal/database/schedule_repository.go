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

// ScheduleRepository handles database operations for the per
// (student, question) spaced-repetition schedule.
type ScheduleRepository struct{}

// NewScheduleRepository creates a new repository instance
func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{}
}

// Get returns the schedule for a (student, question) pair, or nil when
// the student has never answered the question.
func (r *ScheduleRepository) Get(ctx context.Context, studentID, questionID int64) (*models.Schedule, error) {
	return r.get(ctx, DB, studentID, questionID, false)
}

// GetForUpdate fetches the schedule inside tx with a row lock, so two
// concurrent answers to the same question by the same student
// serialize instead of losing an update. The first answer has no row
// to lock; the transaction isolation level turns that race into a
// retryable conflict instead.
func (r *ScheduleRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, studentID, questionID int64) (*models.Schedule, error) {
	return r.get(ctx, tx, studentID, questionID, true)
}

func (r *ScheduleRepository) get(ctx context.Context, q sqlx.ExtContext, studentID, questionID int64, forUpdate bool) (*models.Schedule, error) {
	query := "SELECT * FROM spaced_repetition_schedule WHERE student_id = $1 AND question_id = $2"
	// SQLite serializes through its single writer connection instead
	if forUpdate && q.DriverName() == "postgres" {
		query += " FOR UPDATE"
	}
	var schedule models.Schedule
	err := sqlx.GetContext(ctx, q, &schedule, query, studentID, questionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapTransient("get schedule", err)
	}
	return &schedule, nil
}

// Upsert writes the schedule row keyed on (student_id, question_id),
// creating it on the first answer and replacing the scheduling state
// on every later one.
func (r *ScheduleRepository) Upsert(ctx context.Context, q sqlx.ExtContext, schedule *models.Schedule) error {
	if q.DriverName() == "postgres" {
		err := q.QueryRowxContext(ctx,
			`INSERT INTO spaced_repetition_schedule (
				student_id, question_id, due_date, review_interval, times_repeated, easiness_factor
			) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (student_id, question_id) DO UPDATE SET
				due_date = EXCLUDED.due_date,
				review_interval = EXCLUDED.review_interval,
				times_repeated = EXCLUDED.times_repeated,
				easiness_factor = EXCLUDED.easiness_factor,
				updated_at = NOW()
			RETURNING id, created_at, updated_at`,
			schedule.StudentID, schedule.QuestionID, schedule.DueDate,
			schedule.ReviewInterval, schedule.TimesRepeated, schedule.EasinessFactor,
		).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt)
		if err != nil {
			return wrapTransient("upsert schedule", err)
		}
		return nil
	}

	// SQLite path: probe for an existing row, then update or insert
	var existingID int64
	err := q.QueryRowxContext(ctx,
		"SELECT id FROM spaced_repetition_schedule WHERE student_id = $1 AND question_id = $2",
		schedule.StudentID, schedule.QuestionID,
	).Scan(&existingID)
	switch {
	case err == nil:
		schedule.ID = existingID
		_, err = q.ExecContext(ctx,
			`UPDATE spaced_repetition_schedule SET
				due_date = $1, review_interval = $2, times_repeated = $3,
				easiness_factor = $4, updated_at = CURRENT_TIMESTAMP
			WHERE id = $5`,
			schedule.DueDate, schedule.ReviewInterval, schedule.TimesRepeated,
			schedule.EasinessFactor, existingID,
		)
		if err != nil {
			return wrapTransient("update schedule", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		res, err := q.ExecContext(ctx,
			`INSERT INTO spaced_repetition_schedule (
				student_id, question_id, due_date, review_interval, times_repeated, easiness_factor
			) VALUES ($1, $2, $3, $4, $5, $6)`,
			schedule.StudentID, schedule.QuestionID, schedule.DueDate,
			schedule.ReviewInterval, schedule.TimesRepeated, schedule.EasinessFactor,
		)
		if err != nil {
			return wrapTransient("insert schedule", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		schedule.ID = id
	default:
		return wrapTransient("probe schedule", err)
	}

	return q.QueryRowxContext(ctx,
		"SELECT created_at, updated_at FROM spaced_repetition_schedule WHERE id = $1", schedule.ID,
	).Scan(&schedule.CreatedAt, &schedule.UpdatedAt)
}

// DueBefore streams schedules due at or before asOf for one student,
// ordered by due date ascending with ties broken by times repeated
// ascending (least practiced first). The caller owns the rows.
func (r *ScheduleRepository) DueBefore(ctx context.Context, studentID int64, asOf time.Time, limit int) (*sqlx.Rows, error) {
	rows, err := DB.QueryxContext(ctx, `
		SELECT * FROM spaced_repetition_schedule
		WHERE student_id = $1 AND due_date <= $2
		ORDER BY due_date ASC, times_repeated ASC, question_id ASC
		LIMIT $3
	`, studentID, asOf, limit)
	if err != nil {
		return nil, wrapTransient("query due schedules", err)
	}
	return rows, nil
}

// NextDue returns the earliest-due schedule for a student, or nil when
// the student has no schedules yet.
func (r *ScheduleRepository) NextDue(ctx context.Context, studentID int64) (*models.Schedule, error) {
	var schedule models.Schedule
	err := DB.GetContext(ctx, &schedule, `
		SELECT * FROM spaced_repetition_schedule
		WHERE student_id = $1
		ORDER BY due_date ASC, times_repeated ASC, question_id ASC
		LIMIT 1
	`, studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next due schedule: %w", err)
	}
	return &schedule, nil
}

// CountDue returns how many of a student's questions are due as of now
func (r *ScheduleRepository) CountDue(ctx context.Context, studentID int64, asOf time.Time) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM spaced_repetition_schedule WHERE student_id = $1 AND due_date <= $2",
		studentID, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to count due schedules: %w", err)
	}
	return count, nil
}
