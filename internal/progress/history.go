package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/pkg/errs"
	"github.com/example/studybot/pkg/models"
)

// SessionRecord describes one completed study session for the audit
// log. Quiz sessions are appended by the roller; this entry point
// covers lesson reading sessions and externally driven sessions.
type SessionRecord struct {
	SessionID   string             // UUID; assigned when empty
	StudentID   int64              `validate:"required,gt=0"`
	LessonID    int64              `validate:"gte=0"`
	QuizID      int64              `validate:"gte=0"`
	ContentType models.ContentType `validate:"required"`
	TimeSpent   int                `validate:"gte=0"` // Seconds
	SuccessRate float64            `validate:"gte=0,lte=1"`
	SessionDate time.Time          `validate:"required"`
}

// HistoryRecorder appends study sessions to the write-only audit
// trail. The scheduling core never reads these records back.
type HistoryRecorder struct {
	history  *database.StudyHistoryRepository
	validate *validator.Validate
}

// NewHistoryRecorder creates a history recorder
func NewHistoryRecorder() *HistoryRecorder {
	return &HistoryRecorder{
		history:  database.NewStudyHistoryRepository(),
		validate: validator.New(),
	}
}

// Record appends one session record
func (h *HistoryRecorder) Record(ctx context.Context, record SessionRecord) (*models.StudyHistory, error) {
	if err := h.validate.Struct(record); err != nil {
		return nil, &errs.IntegrityError{Reason: fmt.Sprintf("malformed session record: %v", err)}
	}
	if !record.ContentType.Valid() {
		return nil, &errs.IntegrityError{Reason: fmt.Sprintf("unknown content type %q", record.ContentType)}
	}
	if record.SessionID == "" {
		record.SessionID = uuid.NewString()
	}

	entry := &models.StudyHistory{
		SessionID:   record.SessionID,
		StudentID:   record.StudentID,
		LessonID:    record.LessonID,
		QuizID:      record.QuizID,
		ContentType: record.ContentType,
		TimeSpent:   record.TimeSpent,
		SuccessRate: record.SuccessRate,
		SessionDate: record.SessionDate,
	}
	err := database.WithRetry(ctx, func() error {
		return h.history.Create(ctx, database.DB, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
