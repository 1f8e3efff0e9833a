package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/studybot/pkg/models"
)

const (
	// InitialEasiness is the EF assigned before the first review
	InitialEasiness = 2.5
	// MinEasiness is the floor EF can never fall below
	MinEasiness = 1.3
	// InitialInterval is the review interval in days for a new item
	InitialInterval = 1
	// PassThreshold is the lowest quality counted as a successful recall
	PassThreshold = 3
)

// Quality grades one recall on the 0-5 SM-2 scale
type Quality int

const (
	// QualityBlackout - complete blackout, unable to recall
	QualityBlackout Quality = 0
	// QualityIncorrect - incorrect response
	QualityIncorrect Quality = 1
	// QualityIncorrectFamiliar - incorrect, but the correct answer felt familiar
	QualityIncorrectFamiliar Quality = 2
	// QualityCorrectDifficult - correct response with significant effort
	QualityCorrectDifficult Quality = 3
	// QualityCorrectHesitation - correct response after some hesitation
	QualityCorrectHesitation Quality = 4
	// QualityPerfect - perfect response with no hesitation
	QualityPerfect Quality = 5
)

// Passing reports whether the quality counts as a successful recall
func (q Quality) Passing() bool {
	return q >= PassThreshold
}

// Outcome is one normalized answer event. SubmittedAt is the only
// clock the engine ever reads, which keeps schedules replayable from
// an ordered log of outcomes.
type Outcome struct {
	StudentID   int64
	QuestionID  int64
	Correct     bool
	Quality     Quality
	SubmittedAt time.Time
}

// Advance computes the schedule that follows prev after one review.
// prev is nil for the student's first answer to the question. Pure
// function: same prev and outcome always produce the same schedule.
func Advance(prev *models.Schedule, outcome Outcome) models.Schedule {
	next := models.Schedule{
		StudentID:      outcome.StudentID,
		QuestionID:     outcome.QuestionID,
		ReviewInterval: InitialInterval,
		TimesRepeated:  0,
		EasinessFactor: InitialEasiness,
	}
	if prev != nil {
		next.ID = prev.ID
		next.TimesRepeated = prev.TimesRepeated
		next.EasinessFactor = prev.EasinessFactor
		next.ReviewInterval = prev.ReviewInterval
	}

	q := float64(outcome.Quality)
	ef := next.EasinessFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ef < MinEasiness {
		ef = MinEasiness
	}
	next.EasinessFactor = ef

	if !outcome.Quality.Passing() {
		// Failed recall: restart the repetition ladder
		next.TimesRepeated = 0
		next.ReviewInterval = InitialInterval
	} else {
		next.TimesRepeated++
		switch {
		case next.TimesRepeated == 1:
			next.ReviewInterval = 1
		case next.TimesRepeated == 2:
			next.ReviewInterval = 6
		default:
			next.ReviewInterval = int(math.Round(float64(next.ReviewInterval) * ef))
		}
	}

	next.DueDate = outcome.SubmittedAt.AddDate(0, 0, next.ReviewInterval)
	return next
}

// Replay folds an ordered outcome log into a final schedule, starting
// from initial (nil for a fresh item). Deterministic by construction.
func Replay(initial *models.Schedule, outcomes []Outcome) *models.Schedule {
	current := initial
	for _, outcome := range outcomes {
		next := Advance(current, outcome)
		current = &next
	}
	return current
}
