package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studybot/pkg/errs"
	"github.com/example/studybot/pkg/models"
)

// LessonRepository handles database operations for lessons and their images
type LessonRepository struct{}

// NewLessonRepository creates a new repository instance
func NewLessonRepository() *LessonRepository {
	return &LessonRepository{}
}

// GetByID returns a lesson by ID
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	var lesson models.Lesson
	err := DB.GetContext(ctx, &lesson, "SELECT * FROM lessons WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "lesson", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

// GetAll returns all lessons ordered by title
func (r *LessonRepository) GetAll(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := DB.SelectContext(ctx, &lessons, "SELECT * FROM lessons ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}
	return lessons, nil
}

// GetByTitle returns a lesson by its exact title, or nil when absent
func (r *LessonRepository) GetByTitle(ctx context.Context, title string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := DB.GetContext(ctx, &lesson, "SELECT * FROM lessons WHERE title = $1", title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by title: %w", err)
	}
	return &lesson, nil
}

// Create inserts a new lesson
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if isPostgres() {
		return DB.QueryRowContext(ctx,
			`INSERT INTO lessons (title, description, content_md, difficulty, quiz_id, creator_id)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, last_updated`,
			lesson.Title, lesson.Description, lesson.ContentMD, lesson.Difficulty, lesson.QuizID, lesson.CreatorID,
		).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.LastUpdated)
	}

	res, err := DB.ExecContext(ctx,
		`INSERT INTO lessons (title, description, content_md, difficulty, quiz_id, creator_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		lesson.Title, lesson.Description, lesson.ContentMD, lesson.Difficulty, lesson.QuizID, lesson.CreatorID,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	lesson.ID = id
	return DB.QueryRowContext(ctx,
		"SELECT created_at, last_updated FROM lessons WHERE id = $1", id,
	).Scan(&lesson.CreatedAt, &lesson.LastUpdated)
}

// SetQuiz links the quiz that closes the lesson
func (r *LessonRepository) SetQuiz(ctx context.Context, lessonID, quizID int64) error {
	_, err := DB.ExecContext(ctx,
		"UPDATE lessons SET quiz_id = $1, last_updated = CURRENT_TIMESTAMP WHERE id = $2",
		quizID, lessonID)
	if err != nil {
		return fmt.Errorf("failed to set lesson quiz: %w", err)
	}
	return nil
}

// AddImage attaches an image to a lesson
func (r *LessonRepository) AddImage(ctx context.Context, image *models.LessonImage) error {
	if isPostgres() {
		return DB.QueryRowContext(ctx,
			`INSERT INTO lesson_images (lesson_id, image_url, description, display_line)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			image.LessonID, image.ImageURL, image.Description, image.DisplayLine,
		).Scan(&image.ID)
	}

	res, err := DB.ExecContext(ctx,
		`INSERT INTO lesson_images (lesson_id, image_url, description, display_line)
		 VALUES ($1, $2, $3, $4)`,
		image.LessonID, image.ImageURL, image.Description, image.DisplayLine,
	)
	if err != nil {
		return fmt.Errorf("failed to add lesson image: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	image.ID = id
	return nil
}

// GetImages returns a lesson's images in display order
func (r *LessonRepository) GetImages(ctx context.Context, lessonID int64) ([]models.LessonImage, error) {
	var images []models.LessonImage
	err := DB.SelectContext(ctx, &images,
		"SELECT * FROM lesson_images WHERE lesson_id = $1 ORDER BY display_line", lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson images: %w", err)
	}
	return images, nil
}
