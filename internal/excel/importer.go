package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/pkg/models"
)

// ImportConfig defines the import configuration. Each row describes
// one question together with the lesson and quiz it belongs to:
//
//	lesson title, lesson difficulty, category, quiz title,
//	attempts allowed, estimated time (minutes), question text,
//	question type, weight, options (pipe separated), correct option (1-based)
type ImportConfig struct {
	FilePath   string // Path to the Excel or CSV file
	SheetName  string // Name of the sheet to import (Excel only)
	SkipHeader bool   // Skip the first row
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:  "Sheet1",
		SkipHeader: true,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed   int
	LessonsCreated   int
	QuizzesCreated   int
	QuestionsCreated int
	Skipped          int
	Errors           []string
}

// ImportCatalog imports lessons, quizzes, questions and options from
// an Excel or CSV file. Lessons and quizzes are matched by title, so
// re-importing the same file only adds what is missing.
func ImportCatalog(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, config)
	}
	return importFromExcel(ctx, config)
}

func importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", config.SheetName, err)
	}
	return importRows(ctx, config, rows)
}

func importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return importRows(ctx, config, rows)
}

type importer struct {
	lessons    *database.LessonRepository
	quizzes    *database.QuizRepository
	questions  *database.QuestionRepository
	categories *database.CategoryRepository

	lessonByTitle map[string]*models.Lesson
	quizByTitle   map[string]*models.Quiz
}

func importRows(ctx context.Context, config ImportConfig, rows [][]string) (*ImportResult, error) {
	imp := &importer{
		lessons:       database.NewLessonRepository(),
		quizzes:       database.NewQuizRepository(),
		questions:     database.NewQuestionRepository(),
		categories:    database.NewCategoryRepository(),
		lessonByTitle: make(map[string]*models.Lesson),
		quizByTitle:   make(map[string]*models.Quiz),
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i == 0 && config.SkipHeader {
			continue
		}
		result.TotalProcessed++
		if err := imp.importRow(ctx, row, result); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func (imp *importer) importRow(ctx context.Context, row []string, result *ImportResult) error {
	if len(row) < 11 {
		return fmt.Errorf("expected 11 columns, got %d", len(row))
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	lessonTitle, difficulty, categoryName := row[0], row[1], row[2]
	quizTitle := row[3]
	questionText, questionType, optionsRaw, correctRaw := row[6], row[7], row[9], row[10]

	if lessonTitle == "" || quizTitle == "" || questionText == "" {
		return fmt.Errorf("lesson title, quiz title and question text are required")
	}

	qType := models.QuestionType(questionType)
	if !qType.Valid() {
		return fmt.Errorf("unknown question type %q", questionType)
	}

	attemptsAllowed, _ := strconv.Atoi(row[4])
	estimatedTime, _ := strconv.Atoi(row[5])
	weight, err := strconv.ParseFloat(row[8], 64)
	if err != nil || weight <= 0 {
		weight = 1
	}

	lesson, created, err := imp.ensureLesson(ctx, lessonTitle, difficulty, categoryName)
	if err != nil {
		return err
	}
	if created {
		result.LessonsCreated++
	}

	quiz, created, err := imp.ensureQuiz(ctx, quizTitle, lesson, attemptsAllowed, estimatedTime, difficulty)
	if err != nil {
		return err
	}
	if created {
		result.QuizzesCreated++
	}

	options := strings.Split(optionsRaw, "|")
	correctIndex, err := strconv.Atoi(correctRaw)
	if err != nil || correctIndex < 1 || correctIndex > len(options) {
		return fmt.Errorf("correct option index %q out of range", correctRaw)
	}

	existing, err := imp.questions.GetByQuiz(ctx, quiz.ID)
	if err != nil {
		return err
	}
	for _, q := range existing {
		if q.Text == questionText {
			return nil // already imported
		}
	}

	question := &models.Question{
		QuizID:         quiz.ID,
		Text:           questionText,
		QuestionNumber: len(existing) + 1,
		Type:           qType,
		Weight:         weight,
	}
	if err := imp.questions.Create(ctx, question); err != nil {
		return err
	}
	for i, optionText := range options {
		option := &models.Option{
			QuestionID: question.ID,
			Text:       strings.TrimSpace(optionText),
			IsCorrect:  i == correctIndex-1,
		}
		if err := imp.questions.CreateOption(ctx, option); err != nil {
			return err
		}
	}
	result.QuestionsCreated++
	return nil
}

func (imp *importer) ensureLesson(ctx context.Context, title, difficulty, categoryName string) (*models.Lesson, bool, error) {
	if lesson, ok := imp.lessonByTitle[title]; ok {
		return lesson, false, nil
	}
	lesson, err := imp.lessons.GetByTitle(ctx, title)
	if err != nil {
		return nil, false, err
	}
	created := false
	if lesson == nil {
		level := models.Difficulty(difficulty)
		if !level.Valid() {
			level = models.DifficultyBasic
		}
		lesson = &models.Lesson{Title: title, Difficulty: level}
		if err := imp.lessons.Create(ctx, lesson); err != nil {
			return nil, false, err
		}
		created = true
	}
	if categoryName != "" {
		if err := imp.tagLesson(ctx, lesson.ID, categoryName); err != nil {
			return nil, false, err
		}
	}
	imp.lessonByTitle[title] = lesson
	return lesson, created, nil
}

func (imp *importer) ensureQuiz(ctx context.Context, title string, lesson *models.Lesson, attemptsAllowed, estimatedTime int, difficulty string) (*models.Quiz, bool, error) {
	if quiz, ok := imp.quizByTitle[title]; ok {
		return quiz, false, nil
	}
	existing, err := imp.quizzes.GetByLesson(ctx, lesson.ID)
	if err != nil {
		return nil, false, err
	}
	for i := range existing {
		if existing[i].Title == title {
			imp.quizByTitle[title] = &existing[i]
			return &existing[i], false, nil
		}
	}

	level := models.Difficulty(difficulty)
	if !level.Valid() {
		level = models.DifficultyBasic
	}
	quiz := &models.Quiz{
		LessonID:        lesson.ID,
		Title:           title,
		Difficulty:      level,
		EstimatedTime:   estimatedTime,
		AttemptsAllowed: attemptsAllowed,
	}
	if err := imp.quizzes.Create(ctx, quiz); err != nil {
		return nil, false, err
	}
	if err := imp.lessons.SetQuiz(ctx, lesson.ID, quiz.ID); err != nil {
		return nil, false, err
	}
	imp.quizByTitle[title] = quiz
	return quiz, true, nil
}

func (imp *importer) tagLesson(ctx context.Context, lessonID int64, categoryName string) error {
	category, err := imp.categories.GetByName(ctx, categoryName)
	if err != nil {
		return err
	}
	if category == nil {
		category = &models.Category{Name: categoryName}
		if err := imp.categories.Create(ctx, category); err != nil {
			return err
		}
	}
	return imp.categories.TagLesson(ctx, lessonID, category.ID)
}
