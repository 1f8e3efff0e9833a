package review

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/pkg/models"
)

// SessionQuestion is one item of a review session: the question plus
// its options in randomized presentation order.
type SessionQuestion struct {
	Question models.Question
	Options  []models.Option
}

// Session is a batch of due questions assembled for one student.
type Session struct {
	ID        string // UUID, carried through to the study history record
	StudentID int64
	StartedAt time.Time
	Questions []SessionQuestion
}

// SessionBuilder assembles review sessions from the due set.
type SessionBuilder struct {
	selector  *Selector
	questions *database.QuestionRepository
}

// NewSessionBuilder creates a session builder
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{
		selector:  NewSelector(),
		questions: database.NewQuestionRepository(),
	}
}

// Build pulls up to limit due questions for the student as of asOf and
// pairs each with its shuffled options. An empty session (no due
// items) is returned as-is; the caller decides whether to present it.
func (b *SessionBuilder) Build(ctx context.Context, studentID int64, asOf time.Time, limit int) (*Session, error) {
	ids, err := b.selector.DueQuestionIDs(ctx, studentID, asOf, limit)
	if err != nil {
		return nil, err
	}

	rnd := rand.New(rand.NewSource(asOf.UnixNano()))
	session := &Session{
		ID:        uuid.NewString(),
		StudentID: studentID,
		StartedAt: asOf,
	}
	for _, questionID := range ids {
		question, err := b.questions.GetByID(ctx, questionID)
		if err != nil {
			return nil, err
		}
		options, err := b.questions.GetOptions(ctx, questionID)
		if err != nil {
			return nil, err
		}
		rnd.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
		session.Questions = append(session.Questions, SessionQuestion{
			Question: *question,
			Options:  options,
		})
	}
	return session, nil
}
