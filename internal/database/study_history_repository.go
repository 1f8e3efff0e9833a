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

// StudyHistoryRepository handles the append-only study session audit
// log. Records are never mutated or deleted; the scheduling core only
// writes here.
type StudyHistoryRepository struct{}

// NewStudyHistoryRepository creates a new repository instance
func NewStudyHistoryRepository() *StudyHistoryRepository {
	return &StudyHistoryRepository{}
}

// Create appends one session record
func (r *StudyHistoryRepository) Create(ctx context.Context, q sqlx.ExtContext, entry *models.StudyHistory) error {
	if q.DriverName() == "postgres" {
		err := q.QueryRowxContext(ctx,
			`INSERT INTO study_history (
				session_id, student_id, lesson_id, quiz_id, content_type, time_spent, success_rate, session_date
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			entry.SessionID, entry.StudentID, entry.LessonID, entry.QuizID,
			entry.ContentType, entry.TimeSpent, entry.SuccessRate, entry.SessionDate,
		).Scan(&entry.ID)
		if err != nil {
			return wrapTransient("append study history", err)
		}
		return nil
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO study_history (
			session_id, student_id, lesson_id, quiz_id, content_type, time_spent, success_rate, session_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.SessionID, entry.StudentID, entry.LessonID, entry.QuizID,
		entry.ContentType, entry.TimeSpent, entry.SuccessRate, entry.SessionDate,
	)
	if err != nil {
		return wrapTransient("append study history", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	entry.ID = id
	return nil
}

// GetByStudent returns a student's session records, newest first
func (r *StudyHistoryRepository) GetByStudent(ctx context.Context, studentID int64) ([]models.StudyHistory, error) {
	var entries []models.StudyHistory
	err := DB.SelectContext(ctx, &entries,
		"SELECT * FROM study_history WHERE student_id = $1 ORDER BY session_date DESC, id DESC",
		studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get study history: %w", err)
	}
	return entries, nil
}

// SessionTotals aggregates the audit log for the user tracking rebuild
type SessionTotals struct {
	TotalTimeSpent int `db:"total_time_spent"`
}

// TotalsForStudent returns accumulated session time for a student
func (r *StudyHistoryRepository) TotalsForStudent(ctx context.Context, studentID int64) (*SessionTotals, error) {
	var totals SessionTotals
	err := DB.GetContext(ctx, &totals,
		"SELECT COALESCE(SUM(time_spent), 0) AS total_time_spent FROM study_history WHERE student_id = $1",
		studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session totals: %w", err)
	}
	return &totals, nil
}

// LastActivity returns the timestamp and lesson of the student's most
// recent session. Both are zero values when the log is empty.
func (r *StudyHistoryRepository) LastActivity(ctx context.Context, studentID int64) (*time.Time, int64, error) {
	var row struct {
		SessionDate time.Time `db:"session_date"`
		LessonID    int64     `db:"lesson_id"`
	}
	err := DB.GetContext(ctx, &row, `
		SELECT session_date, lesson_id FROM study_history
		WHERE student_id = $1
		ORDER BY session_date DESC, id DESC
		LIMIT 1
	`, studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get last activity: %w", err)
	}
	return &row.SessionDate, row.LessonID, nil
}
