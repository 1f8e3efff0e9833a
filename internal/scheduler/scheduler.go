package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/internal/progress"
)

// Default window for sending due-review reminders
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier interface for sending notifications
type Notifier interface {
	SendDueReminder(studentID int64, count int) error
}

// Scheduler manages the background jobs: the hourly due sweep with
// reminders and the nightly user tracking rebuild.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	schedules *database.ScheduleRepository
	tracking  *database.QuestionTrackingRepository
	students  *database.StudentRepository
	tracker   *progress.Tracker
}

// New creates a new scheduler instance. notifier may be nil, in which
// case the due sweep only refreshes the is_due flags.
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		schedules: database.NewScheduleRepository(),
		tracking:  database.NewQuestionTrackingRepository(),
		students:  database.NewStudentRepository(),
		tracker:   progress.NewTracker(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.runDueSweep)
	s.scheduler.Every(1).Day().At("03:00").Do(s.runTrackingRebuild)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// runDueSweep refreshes the derived is_due flags and, inside the
// notification window, reminds students with due reviews.
func (s *Scheduler) runDueSweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	refreshed, err := s.tracking.RefreshDueFlags(ctx, now)
	if err != nil {
		log.Printf("Error refreshing due flags: %v", err)
		return
	}
	log.Printf("Due sweep refreshed %d tracking rows", refreshed)

	if s.notifier == nil || !withinNotificationWindow(now.Hour()) {
		return
	}

	students, err := s.students.GetAll(ctx)
	if err != nil {
		log.Printf("Error listing students for reminders: %v", err)
		return
	}
	for _, student := range students {
		count, err := s.schedules.CountDue(ctx, student.ID, now)
		if err != nil {
			log.Printf("Error counting due items for student %d: %v", student.ID, err)
			continue
		}
		if count == 0 {
			continue
		}
		if err := s.notifier.SendDueReminder(student.ID, count); err != nil {
			log.Printf("Error sending reminder to student %d: %v", student.ID, err)
		}
	}
}

// runTrackingRebuild recomputes every student's rollup from source rows
func (s *Scheduler) runTrackingRebuild() {
	if err := s.tracker.RebuildAll(context.Background()); err != nil {
		log.Printf("Error rebuilding user tracking: %v", err)
	}
}

// RunManualSweep forces a due check and reminder for a single student
func (s *Scheduler) RunManualSweep(ctx context.Context, studentID int64) error {
	count, err := s.schedules.CountDue(ctx, studentID, time.Now().UTC())
	if err != nil {
		return err
	}
	if count > 0 && s.notifier != nil {
		return s.notifier.SendDueReminder(studentID, count)
	}
	return nil
}

func withinNotificationWindow(hour int) bool {
	start := DefaultNotificationStartHour
	end := DefaultNotificationEndHour
	if raw := os.Getenv("NOTIFICATION_START_HOUR"); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			start = h
		}
	}
	if raw := os.Getenv("NOTIFICATION_END_HOUR"); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			end = h
		}
	}
	return hour >= start && hour <= end
}
