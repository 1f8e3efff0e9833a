package review

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

// fixture is a seeded catalog: one student, one lesson with one quiz,
// three questions with two options each. The first option of every
// question is the correct one.
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

	students := database.NewStudentRepository()
	lessons := database.NewLessonRepository()
	quizzes := database.NewQuizRepository()
	questions := database.NewQuestionRepository()

	f := &fixture{
		Student: &models.Student{Name: "Ada", Email: "ada@example.com"},
		Lesson:  &models.Lesson{Title: "Fractions", Difficulty: models.DifficultyBasic},
	}
	require.NoError(t, students.Create(ctx, f.Student))
	require.NoError(t, lessons.Create(ctx, f.Lesson))

	f.Quiz = &models.Quiz{
		LessonID:        f.Lesson.ID,
		Title:           "Fractions quiz",
		Difficulty:      models.DifficultyBasic,
		EstimatedTime:   3,
		AttemptsAllowed: 0,
	}
	require.NoError(t, quizzes.Create(ctx, f.Quiz))
	require.NoError(t, lessons.SetQuiz(ctx, f.Lesson.ID, f.Quiz.ID))

	weights := []float64{1, 1, 2}
	for i := 0; i < 3; i++ {
		q := &models.Question{
			QuizID:         f.Quiz.ID,
			Text:           "question " + string(rune('A'+i)),
			QuestionNumber: i + 1,
			Type:           models.MultipleChoice,
			Weight:         weights[i],
		}
		require.NoError(t, questions.Create(ctx, q))
		f.Question = append(f.Question, q)

		correct := &models.Option{QuestionID: q.ID, Text: "right", IsCorrect: true}
		wrong := &models.Option{QuestionID: q.ID, Text: "wrong", IsCorrect: false}
		require.NoError(t, questions.CreateOption(ctx, correct))
		require.NoError(t, questions.CreateOption(ctx, wrong))
		f.Correct = append(f.Correct, correct)
		f.Wrong = append(f.Wrong, wrong)
	}
	return f
}
