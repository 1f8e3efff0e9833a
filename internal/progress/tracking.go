package progress

import (
	"context"
	"fmt"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/pkg/models"
)

// Tracker maintains the per-student user tracking rollup. The row is a
// denormalized cache over attempts, schedules and study history:
// Rebuild recomputes it from those source rows, so it can be refreshed
// at any time without drift.
type Tracker struct {
	students  *database.StudentRepository
	attempts  *database.QuizAttemptRepository
	schedules *database.ScheduleRepository
	history   *database.StudyHistoryRepository
	tracking  *database.UserTrackingRepository
}

// NewTracker creates a tracker over the shared repositories
func NewTracker() *Tracker {
	return &Tracker{
		students:  database.NewStudentRepository(),
		attempts:  database.NewQuizAttemptRepository(),
		schedules: database.NewScheduleRepository(),
		history:   database.NewStudyHistoryRepository(),
		tracking:  database.NewUserTrackingRepository(),
	}
}

// Rebuild recomputes one student's rollup from source rows and writes
// it back.
func (t *Tracker) Rebuild(ctx context.Context, studentID int64) error {
	stats, err := t.attempts.StatsForStudent(ctx, studentID)
	if err != nil {
		return err
	}
	lastQuizID, err := t.attempts.LastQuizID(ctx, studentID)
	if err != nil {
		return err
	}
	totals, err := t.history.TotalsForStudent(ctx, studentID)
	if err != nil {
		return err
	}
	lastActivity, lastLessonID, err := t.history.LastActivity(ctx, studentID)
	if err != nil {
		return err
	}
	nextDue, err := t.schedules.NextDue(ctx, studentID)
	if err != nil {
		return err
	}

	tracking := &models.UserTracking{
		StudentID:             studentID,
		LessonID:              lastLessonID,
		LastQuizID:            lastQuizID,
		TotalQuizzesCompleted: stats.TotalCompleted,
		AverageScore:          stats.AverageScore,
		LastActivity:          lastActivity,
		TotalTimeSpent:        totals.TotalTimeSpent,
	}
	if nextDue != nil {
		tracking.NextRepetition = &nextDue.DueDate
		tracking.NextQuestionID = nextDue.QuestionID
	}

	return database.WithRetry(ctx, func() error {
		return t.tracking.Upsert(ctx, database.DB, tracking)
	})
}

// RebuildAll refreshes the rollup for every student. Run nightly by
// the scheduler so a missed lazy refresh can never diverge permanently.
func (t *Tracker) RebuildAll(ctx context.Context) error {
	students, err := t.students.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, student := range students {
		if err := t.Rebuild(ctx, student.ID); err != nil {
			return fmt.Errorf("failed to rebuild tracking for student %d: %w", student.ID, err)
		}
	}
	return nil
}
