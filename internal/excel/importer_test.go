package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studybot/internal/database"
)

const catalogCSV = `lesson,difficulty,category,quiz,attempts,minutes,question,type,weight,options,correct
Fractions,basic,Math,Fractions quiz,3,5,What is 1/2 + 1/4?,multiple_choice,1,3/4|1/2|2/6,1
Fractions,basic,Math,Fractions quiz,3,5,Is 1/3 larger than 1/4?,true_false,1,True|False,1
Decimals,intermediate,Math,Decimals quiz,0,4,What is 0.1 + 0.2?,multiple_choice,2,0.3|0.12|0.02,1
`

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, database.Connect())
	t.Cleanup(func() { _ = database.Close() })
}

func writeCatalogCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestImportCatalogFromCSV(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	config := DefaultImportConfig()
	config.FilePath = writeCatalogCSV(t, catalogCSV)

	result, err := ImportCatalog(ctx, config)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 2, result.LessonsCreated)
	assert.Equal(t, 2, result.QuizzesCreated)
	assert.Equal(t, 3, result.QuestionsCreated)

	lessons := database.NewLessonRepository()
	lesson, err := lessons.GetByTitle(ctx, "Fractions")
	require.NoError(t, err)
	require.NotNil(t, lesson)
	assert.NotZero(t, lesson.QuizID)

	questions := database.NewQuestionRepository()
	qs, err := questions.GetByQuiz(ctx, lesson.QuizID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "What is 1/2 + 1/4?", qs[0].Text)

	options, err := questions.GetOptions(ctx, qs[0].ID)
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.True(t, options[0].IsCorrect)
	assert.False(t, options[1].IsCorrect)

	category, err := database.NewCategoryRepository().GetByName(ctx, "Math")
	require.NoError(t, err)
	require.NotNil(t, category)
}

func TestImportCatalogIsIdempotent(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	config := DefaultImportConfig()
	config.FilePath = writeCatalogCSV(t, catalogCSV)

	_, err := ImportCatalog(ctx, config)
	require.NoError(t, err)

	second, err := ImportCatalog(ctx, config)
	require.NoError(t, err)
	assert.Zero(t, second.LessonsCreated)
	assert.Zero(t, second.QuizzesCreated)
	assert.Zero(t, second.QuestionsCreated)
}

func TestImportCatalogReportsBadRows(t *testing.T) {
	setupTestDB(t)

	body := catalogCSV +
		"Decimals,intermediate,Math,Decimals quiz,0,4,Bad correct index,multiple_choice,1,a|b,7\n" +
		"Decimals,intermediate,Math,Decimals quiz,0,4,Bad type,essay,1,a|b,1\n"
	config := DefaultImportConfig()
	config.FilePath = writeCatalogCSV(t, body)

	result, err := ImportCatalog(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.QuestionsCreated)
}
