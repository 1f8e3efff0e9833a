package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studybot/pkg/models"
)

func outcomeAt(q Quality, at time.Time) Outcome {
	return Outcome{
		StudentID:   1,
		QuestionID:  42,
		Correct:     q.Passing(),
		Quality:     q,
		SubmittedAt: at,
	}
}

func TestAdvanceFirstReview(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	next := Advance(nil, outcomeAt(QualityPerfect, start))

	assert.Equal(t, 1, next.TimesRepeated)
	assert.Equal(t, 1, next.ReviewInterval)
	assert.InDelta(t, 2.6, next.EasinessFactor, 1e-9)
	assert.Equal(t, start.AddDate(0, 0, 1), next.DueDate)
}

func TestAdvanceSecondSuccess(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := Advance(nil, outcomeAt(QualityPerfect, start))

	second := Advance(&first, outcomeAt(QualityCorrectHesitation, start.AddDate(0, 0, 1)))

	// q=4 leaves EF unchanged: 0.1 - 1*(0.08 + 0.02) = 0
	assert.Equal(t, 2, second.TimesRepeated)
	assert.Equal(t, 6, second.ReviewInterval)
	assert.InDelta(t, 2.6, second.EasinessFactor, 1e-9)
	assert.Equal(t, start.AddDate(0, 0, 7), second.DueDate)
}

func TestAdvanceThirdSuccessMultipliesInterval(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	outcomes := []Outcome{
		outcomeAt(QualityPerfect, start),
		outcomeAt(QualityCorrectHesitation, start.AddDate(0, 0, 1)),
		outcomeAt(QualityCorrectHesitation, start.AddDate(0, 0, 7)),
	}

	final := Replay(nil, outcomes)
	require.NotNil(t, final)

	// round(6 * 2.6) = 16
	assert.Equal(t, 3, final.TimesRepeated)
	assert.Equal(t, 16, final.ReviewInterval)
	assert.Equal(t, start.AddDate(0, 0, 7+16), final.DueDate)
}

func TestAdvanceFailureResetsLadder(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	prev := models.Schedule{
		StudentID:      1,
		QuestionID:     42,
		TimesRepeated:  4,
		ReviewInterval: 30,
		EasinessFactor: 2.2,
	}

	next := Advance(&prev, outcomeAt(QualityIncorrectFamiliar, start))

	assert.Equal(t, 0, next.TimesRepeated)
	assert.Equal(t, 1, next.ReviewInterval)
	assert.Equal(t, start.AddDate(0, 0, 1), next.DueDate)
	// EF still takes the quality penalty on failure
	assert.Less(t, next.EasinessFactor, prev.EasinessFactor)
	assert.GreaterOrEqual(t, next.EasinessFactor, MinEasiness)
}

func TestEasinessNeverDropsBelowFloor(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var prev *models.Schedule
	for i := 0; i < 20; i++ {
		next := Advance(prev, outcomeAt(QualityBlackout, start.AddDate(0, 0, i)))
		assert.GreaterOrEqual(t, next.EasinessFactor, MinEasiness)
		prev = &next
	}
	assert.InDelta(t, MinEasiness, prev.EasinessFactor, 1e-9)
}

func TestAdvanceIsDeterministic(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	prev := models.Schedule{
		StudentID:      1,
		QuestionID:     42,
		TimesRepeated:  2,
		ReviewInterval: 6,
		EasinessFactor: 2.36,
	}
	outcome := outcomeAt(QualityCorrectDifficult, start)

	a := Advance(&prev, outcome)
	b := Advance(&prev, outcome)

	assert.Equal(t, a, b)
}

func TestReplayMatchesStepwiseAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	qualities := []Quality{
		QualityPerfect,
		QualityCorrectHesitation,
		QualityIncorrect,
		QualityCorrectDifficult,
		QualityPerfect,
	}

	outcomes := make([]Outcome, len(qualities))
	var stepwise *models.Schedule
	for i, q := range qualities {
		outcomes[i] = outcomeAt(q, start.AddDate(0, 0, i))
		next := Advance(stepwise, outcomes[i])
		stepwise = &next
	}

	replayed := Replay(nil, outcomes)
	require.NotNil(t, replayed)
	assert.Equal(t, *stepwise, *replayed)
}

func TestQualityPassing(t *testing.T) {
	assert.False(t, QualityBlackout.Passing())
	assert.False(t, QualityIncorrect.Passing())
	assert.False(t, QualityIncorrectFamiliar.Passing())
	assert.True(t, QualityCorrectDifficult.Passing())
	assert.True(t, QualityCorrectHesitation.Passing())
	assert.True(t, QualityPerfect.Passing())
}
