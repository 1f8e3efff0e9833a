package review

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/pkg/models"
)

// Selector produces the ordered set of due questions for a student.
// Each call re-queries current state; the due set changes over time,
// so results are never cached across calls.
type Selector struct {
	schedules *database.ScheduleRepository
}

// NewSelector creates a selector over the schedule store
func NewSelector() *Selector {
	return &Selector{schedules: database.NewScheduleRepository()}
}

// DueIterator walks one due-set query lazily. It is finite and
// non-restartable: once exhausted, issue a new Due call.
type DueIterator struct {
	rows    *sqlx.Rows
	current models.Schedule
	err     error
}

// Next advances to the next due schedule, returning false when the
// set is exhausted or an error occurred.
func (it *DueIterator) Next() bool {
	if it.err != nil || !it.rows.Next() {
		if it.err == nil {
			it.err = it.rows.Err()
		}
		return false
	}
	if err := it.rows.StructScan(&it.current); err != nil {
		it.err = err
		return false
	}
	return true
}

// Schedule returns the schedule at the iterator's current position
func (it *DueIterator) Schedule() models.Schedule {
	return it.current
}

// Err returns the first error hit while iterating
func (it *DueIterator) Err() error {
	return it.err
}

// Close releases the underlying query
func (it *DueIterator) Close() error {
	return it.rows.Close()
}

// Due returns the student's questions due at or before asOf, ordered
// by due date ascending with ties broken by times repeated ascending,
// capped at limit. The caller must Close the iterator.
func (s *Selector) Due(ctx context.Context, studentID int64, asOf time.Time, limit int) (*DueIterator, error) {
	rows, err := s.schedules.DueBefore(ctx, studentID, asOf, limit)
	if err != nil {
		return nil, err
	}
	return &DueIterator{rows: rows}, nil
}

// DueQuestionIDs drains one due-set query into a slice of question
// IDs, preserving the selection order.
func (s *Selector) DueQuestionIDs(ctx context.Context, studentID int64, asOf time.Time, limit int) ([]int64, error) {
	it, err := s.Due(ctx, studentID, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var ids []int64
	for it.Next() {
		ids = append(ids, it.Schedule().QuestionID)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
