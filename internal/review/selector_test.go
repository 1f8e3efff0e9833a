package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/pkg/models"
)

func seedSchedule(t *testing.T, studentID, questionID int64, due time.Time, timesRepeated int) {
	t.Helper()
	err := database.NewScheduleRepository().Upsert(context.Background(), database.DB, &models.Schedule{
		StudentID:      studentID,
		QuestionID:     questionID,
		DueDate:        due,
		ReviewInterval: 1,
		TimesRepeated:  timesRepeated,
		EasinessFactor: 2.5,
	})
	require.NoError(t, err)
}

func TestDueOrderedByDueDate(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	asOf := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	seedSchedule(t, f.Student.ID, f.Question[0].ID, asOf.AddDate(0, 0, -1), 2)
	seedSchedule(t, f.Student.ID, f.Question[1].ID, asOf.AddDate(0, 0, -3), 1)
	seedSchedule(t, f.Student.ID, f.Question[2].ID, asOf.AddDate(0, 0, 5), 1) // Not yet due

	ids, err := NewSelector().DueQuestionIDs(ctx, f.Student.ID, asOf, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.Question[1].ID, f.Question[0].ID}, ids)
}

func TestDueTieBrokenByTimesRepeated(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	asOf := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := asOf.AddDate(0, 0, -2)

	// Same due date: the least-rehearsed question comes first
	seedSchedule(t, f.Student.ID, f.Question[0].ID, due, 4)
	seedSchedule(t, f.Student.ID, f.Question[1].ID, due, 0)
	seedSchedule(t, f.Student.ID, f.Question[2].ID, due, 2)

	ids, err := NewSelector().DueQuestionIDs(ctx, f.Student.ID, asOf, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.Question[1].ID, f.Question[2].ID, f.Question[0].ID}, ids)
}

func TestDueRespectsLimit(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	asOf := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i, q := range f.Question {
		seedSchedule(t, f.Student.ID, q.ID, asOf.AddDate(0, 0, -i-1), 0)
	}

	ids, err := NewSelector().DueQuestionIDs(ctx, f.Student.ID, asOf, 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, f.Question[2].ID, ids[0])
}

func TestDueEmptyForUnscheduledStudent(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)

	ids, err := NewSelector().DueQuestionIDs(context.Background(), f.Student.ID, time.Now().UTC(), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDueIteratorWalksLazily(t *testing.T) {
	setupTestDB(t)
	f := seedCatalog(t)
	ctx := context.Background()
	asOf := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	seedSchedule(t, f.Student.ID, f.Question[0].ID, asOf.AddDate(0, 0, -1), 1)
	seedSchedule(t, f.Student.ID, f.Question[1].ID, asOf.AddDate(0, 0, -2), 1)

	it, err := NewSelector().Due(ctx, f.Student.ID, asOf, 10)
	require.NoError(t, err)
	defer it.Close()

	var seen int
	for it.Next() {
		assert.Equal(t, f.Student.ID, it.Schedule().StudentID)
		assert.False(t, it.Schedule().DueDate.After(asOf))
		seen++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 2, seen)
	assert.False(t, it.Next()) // Exhausted iterators stay exhausted
}
