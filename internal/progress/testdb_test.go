package progress

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/pkg/models"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, database.Connect())
	t.Cleanup(func() { _ = database.Close() })
}

// fixture is a seeded catalog: one student, one lesson with one quiz
// of three weighted questions. The first option of every question is
// the correct one.
type fixture struct {
	Student  *models.Student
	Lesson   *models.Lesson
	Quiz     *models.Quiz
	Question []*models.Question
	Correct  []*models.Option
	Wrong    []*models.Option
}

func seedCatalog(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		Student: &models.Student{Name: "Ada", Email: "ada@example.com"},
		Lesson:  &models.Lesson{Title: "Fractions", Difficulty: models.DifficultyBasic},
	}
	require.NoError(t, database.NewStudentRepository().Create(ctx, f.Student))
	lessons := database.NewLessonRepository()
	require.NoError(t, lessons.Create(ctx, f.Lesson))

	f.Quiz, f.Question, f.Correct, f.Wrong = seedQuiz(t, f.Lesson.ID, 0, []float64{1, 1, 2})
	require.NoError(t, lessons.SetQuiz(ctx, f.Lesson.ID, f.Quiz.ID))
	return f
}

func seedQuiz(t *testing.T, lessonID int64, attemptsAllowed int, weights []float64) (*models.Quiz, []*models.Question, []*models.Option, []*models.Option) {
	t.Helper()
	ctx := context.Background()
	questions := database.NewQuestionRepository()

	quiz := &models.Quiz{
		LessonID:        lessonID,
		Title:           "quiz",
		Difficulty:      models.DifficultyBasic,
		EstimatedTime:   len(weights),
		AttemptsAllowed: attemptsAllowed,
	}
	require.NoError(t, database.NewQuizRepository().Create(ctx, quiz))

	var qs []*models.Question
	var correct, wrong []*models.Option
	for i, weight := range weights {
		q := &models.Question{
			QuizID:         quiz.ID,
			Text:           "question " + string(rune('A'+i)),
			QuestionNumber: i + 1,
			Type:           models.MultipleChoice,
			Weight:         weight,
		}
		require.NoError(t, questions.Create(ctx, q))
		qs = append(qs, q)

		right := &models.Option{QuestionID: q.ID, Text: "right", IsCorrect: true}
		bad := &models.Option{QuestionID: q.ID, Text: "wrong", IsCorrect: false}
		require.NoError(t, questions.CreateOption(ctx, right))
		require.NoError(t, questions.CreateOption(ctx, bad))
		correct = append(correct, right)
		wrong = append(wrong, bad)
	}
	return quiz, qs, correct, wrong
}

// answersFor builds a full answer batch for the fixture quiz, picking
// the correct option where pattern is true.
func (f *fixture) answersFor(pattern []bool) []SubmittedAnswer {
	answers := make([]SubmittedAnswer, len(pattern))
	for i, right := range pattern {
		optionID := f.Wrong[i].ID
		if right {
			optionID = f.Correct[i].ID
		}
		answers[i] = SubmittedAnswer{QuestionID: f.Question[i].ID, OptionID: optionID}
	}
	return answers
}
