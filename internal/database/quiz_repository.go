package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studybot/pkg/errs"
	"github.com/example/studybot/pkg/models"
)

// QuizRepository handles database operations for quizzes
type QuizRepository struct{}

// NewQuizRepository creates a new repository instance
func NewQuizRepository() *QuizRepository {
	return &QuizRepository{}
}

// GetByID returns a quiz by ID
func (r *QuizRepository) GetByID(ctx context.Context, id int64) (*models.Quiz, error) {
	var quiz models.Quiz
	err := DB.GetContext(ctx, &quiz, "SELECT * FROM quizzes WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "quiz", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &quiz, nil
}

// GetByLesson returns the quizzes attached to a lesson
func (r *QuizRepository) GetByLesson(ctx context.Context, lessonID int64) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := DB.SelectContext(ctx, &quizzes, "SELECT * FROM quizzes WHERE lesson_id = $1 ORDER BY id", lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes by lesson: %w", err)
	}
	return quizzes, nil
}

// Create inserts a new quiz
func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if isPostgres() {
		return DB.QueryRowContext(ctx,
			`INSERT INTO quizzes (lesson_id, title, description, difficulty, estimated_time, attempts_allowed)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
			quiz.LessonID, quiz.Title, quiz.Description, quiz.Difficulty, quiz.EstimatedTime, quiz.AttemptsAllowed,
		).Scan(&quiz.ID, &quiz.CreatedAt)
	}

	res, err := DB.ExecContext(ctx,
		`INSERT INTO quizzes (lesson_id, title, description, difficulty, estimated_time, attempts_allowed)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		quiz.LessonID, quiz.Title, quiz.Description, quiz.Difficulty, quiz.EstimatedTime, quiz.AttemptsAllowed,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	quiz.ID = id
	return DB.QueryRowContext(ctx, "SELECT created_at FROM quizzes WHERE id = $1", id).Scan(&quiz.CreatedAt)
}
