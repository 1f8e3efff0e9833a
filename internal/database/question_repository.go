package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studybot/pkg/errs"
	"github.com/example/studybot/pkg/models"
)

// QuestionRepository handles database operations for questions and options
type QuestionRepository struct{}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{}
}

// GetByID returns a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	var question models.Question
	err := DB.GetContext(ctx, &question, "SELECT * FROM questions WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "question", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}

// GetByQuiz returns a quiz's questions in presentation order
func (r *QuestionRepository) GetByQuiz(ctx context.Context, quizID int64) ([]models.Question, error) {
	var questions []models.Question
	err := DB.SelectContext(ctx, &questions,
		"SELECT * FROM questions WHERE quiz_id = $1 ORDER BY question_number, id", quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions by quiz: %w", err)
	}
	return questions, nil
}

// Create inserts a new question
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if isPostgres() {
		return DB.QueryRowContext(ctx,
			`INSERT INTO questions (quiz_id, question_text, question_number, question_type, weight)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			question.QuizID, question.Text, question.QuestionNumber, question.Type, question.Weight,
		).Scan(&question.ID)
	}

	res, err := DB.ExecContext(ctx,
		`INSERT INTO questions (quiz_id, question_text, question_number, question_type, weight)
		 VALUES ($1, $2, $3, $4, $5)`,
		question.QuizID, question.Text, question.QuestionNumber, question.Type, question.Weight,
	)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	question.ID = id
	return nil
}

// GetOptionByID returns an option by ID
func (r *QuestionRepository) GetOptionByID(ctx context.Context, id int64) (*models.Option, error) {
	var option models.Option
	err := DB.GetContext(ctx, &option, "SELECT * FROM options WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "option", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	return &option, nil
}

// GetOptions returns all options for a question
func (r *QuestionRepository) GetOptions(ctx context.Context, questionID int64) ([]models.Option, error) {
	var options []models.Option
	err := DB.SelectContext(ctx, &options,
		"SELECT * FROM options WHERE question_id = $1 ORDER BY id", questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}
	return options, nil
}

// CreateOption inserts a new answer option
func (r *QuestionRepository) CreateOption(ctx context.Context, option *models.Option) error {
	if isPostgres() {
		return DB.QueryRowContext(ctx,
			`INSERT INTO options (question_id, option_text, is_correct)
			 VALUES ($1, $2, $3) RETURNING id`,
			option.QuestionID, option.Text, option.IsCorrect,
		).Scan(&option.ID)
	}

	res, err := DB.ExecContext(ctx,
		`INSERT INTO options (question_id, option_text, is_correct) VALUES ($1, $2, $3)`,
		option.QuestionID, option.Text, option.IsCorrect,
	)
	if err != nil {
		return fmt.Errorf("failed to create option: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	option.ID = id
	return nil
}
