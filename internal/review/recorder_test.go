package review

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/errs"
)

func TestRecordAnswerFirstCorrect(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	recorder := NewRecorder()
	submitted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	outcome, err := recorder.RecordAnswer(ctx, Submission{
		StudentID:   f.Student.ID,
		QuestionID:  f.Question[0].ID,
		OptionID:    f.Correct[0].ID,
		SubmittedAt: submitted,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Correct)
	assert.Equal(t, spaced_repetition.QualityCorrectHesitation, outcome.Quality)

	schedule, err := database.NewScheduleRepository().Get(ctx, f.Student.ID, f.Question[0].ID)
	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.Equal(t, 1, schedule.TimesRepeated)
	assert.Equal(t, 1, schedule.ReviewInterval)
	assert.InDelta(t, 2.5, schedule.EasinessFactor, 1e-9)
	assert.WithinDuration(t, submitted.AddDate(0, 0, 1), schedule.DueDate, time.Second)

	tracking, err := database.NewQuestionTrackingRepository().Get(ctx, f.Student.ID, f.Question[0].ID)
	require.NoError(t, err)
	require.NotNil(t, tracking)
	assert.Equal(t, 1, tracking.TimesAnswered)
	assert.Equal(t, 1, tracking.TimesCorrect)
}

func TestRecordAnswerIncorrectResetsLadder(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	recorder := NewRecorder()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	sub := Submission{
		StudentID:   f.Student.ID,
		QuestionID:  f.Question[0].ID,
		OptionID:    f.Correct[0].ID,
		SubmittedAt: start,
	}
	_, err := recorder.RecordAnswer(ctx, sub)
	require.NoError(t, err)

	sub.SubmittedAt = start.AddDate(0, 0, 1)
	_, err = recorder.RecordAnswer(ctx, sub)
	require.NoError(t, err)

	sub.OptionID = f.Wrong[0].ID
	sub.SubmittedAt = start.AddDate(0, 0, 7)
	outcome, err := recorder.RecordAnswer(ctx, sub)
	require.NoError(t, err)
	assert.False(t, outcome.Correct)

	schedule, err := database.NewScheduleRepository().Get(ctx, f.Student.ID, f.Question[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, schedule.TimesRepeated)
	assert.Equal(t, 1, schedule.ReviewInterval)
	assert.WithinDuration(t, sub.SubmittedAt.AddDate(0, 0, 1), schedule.DueDate, time.Second)

	tracking, err := database.NewQuestionTrackingRepository().Get(ctx, f.Student.ID, f.Question[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, tracking.TimesAnswered)
	assert.Equal(t, 2, tracking.TimesCorrect)
}

func TestRecordAnswerUnknownStudent(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	recorder := NewRecorder()

	_, err := recorder.RecordAnswer(context.Background(), Submission{
		StudentID:   9999,
		QuestionID:  f.Question[0].ID,
		OptionID:    f.Correct[0].ID,
		SubmittedAt: time.Now().UTC(),
	})
	assert.True(t, errs.IsNotFound(err))
}

func TestRecordAnswerOptionFromOtherQuestion(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	recorder := NewRecorder()

	_, err := recorder.RecordAnswer(context.Background(), Submission{
		StudentID:   f.Student.ID,
		QuestionID:  f.Question[0].ID,
		OptionID:    f.Correct[1].ID,
		SubmittedAt: time.Now().UTC(),
	})
	var integrity *errs.IntegrityError
	assert.ErrorAs(t, err, &integrity)
}

func TestAnswersAreAppendOnly(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	recorder := NewRecorder()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, optionID := range []int64{f.Correct[0].ID, f.Wrong[0].ID, f.Correct[0].ID} {
		_, err := recorder.RecordAnswer(ctx, Submission{
			StudentID:   f.Student.ID,
			QuestionID:  f.Question[0].ID,
			OptionID:    optionID,
			SubmittedAt: start.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	answers, err := database.NewAnswerRepository().GetByStudentAndQuestion(ctx, f.Student.ID, f.Question[0].ID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.True(t, answers[0].IsCorrect)
	assert.False(t, answers[1].IsCorrect)
	assert.True(t, answers[2].IsCorrect)
}

func TestDeriveQualityFromLatency(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	recorder := NewRecorder()
	submitted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// 3 minute quiz across 3 questions leaves a 1 minute budget each
	cases := []struct {
		name    string
		latency time.Duration
		want    spaced_repetition.Quality
	}{
		{"fast", 20 * time.Second, spaced_repetition.QualityPerfect},
		{"typical", 90 * time.Second, spaced_repetition.QualityCorrectHesitation},
		{"slow", 3 * time.Minute, spaced_repetition.QualityCorrectDifficult},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prepared, err := recorder.Prepare(ctx, Submission{
				StudentID:   f.Student.ID,
				QuestionID:  f.Question[0].ID,
				OptionID:    f.Correct[0].ID,
				SubmittedAt: submitted,
				Latency:     tc.latency,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, prepared.Outcome.Quality)
		})
	}
}

func TestConcurrentFirstAnswersLoseNoUpdate(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	recorder := NewRecorder()
	submitted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Two concurrent first answers to the same question must both land:
	// neither advance may overwrite the other
	var wg sync.WaitGroup
	errc := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(offset time.Duration) {
			defer wg.Done()
			_, err := recorder.RecordAnswer(ctx, Submission{
				StudentID:   f.Student.ID,
				QuestionID:  f.Question[0].ID,
				OptionID:    f.Correct[0].ID,
				SubmittedAt: submitted.Add(offset),
			})
			errc <- err
		}(time.Duration(i) * time.Second)
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		require.NoError(t, err)
	}

	schedule, err := database.NewScheduleRepository().Get(ctx, f.Student.ID, f.Question[0].ID)
	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.Equal(t, 2, schedule.TimesRepeated)

	tracking, err := database.NewQuestionTrackingRepository().Get(ctx, f.Student.ID, f.Question[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, tracking.TimesAnswered)
	assert.Equal(t, schedule.TimesRepeated, tracking.TimesAnswered)

	answers, err := database.NewAnswerRepository().GetByStudentAndQuestion(ctx, f.Student.ID, f.Question[0].ID)
	require.NoError(t, err)
	assert.Len(t, answers, 2)
}

func TestTrackingNeverExceedsAnswered(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	recorder := NewRecorder()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	options := []int64{f.Wrong[1].ID, f.Correct[1].ID, f.Wrong[1].ID, f.Correct[1].ID, f.Correct[1].ID}
	for i, optionID := range options {
		_, err := recorder.RecordAnswer(ctx, Submission{
			StudentID:   f.Student.ID,
			QuestionID:  f.Question[1].ID,
			OptionID:    optionID,
			SubmittedAt: start.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	tracking, err := database.NewQuestionTrackingRepository().Get(ctx, f.Student.ID, f.Question[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 5, tracking.TimesAnswered)
	assert.Equal(t, 3, tracking.TimesCorrect)
	assert.LessOrEqual(t, tracking.TimesCorrect, tracking.TimesAnswered)
}
