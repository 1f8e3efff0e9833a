package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studybot/pkg/models"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct{}

// NewCategoryRepository creates a new repository instance
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{}
}

// GetAll returns all categories
func (r *CategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := DB.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY category_name")
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetByName returns a category by name, or nil when absent
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := DB.GetContext(ctx, &category, "SELECT * FROM categories WHERE category_name = $1", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// Create inserts a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if isPostgres() {
		return DB.QueryRowContext(ctx,
			`INSERT INTO categories (category_name, category_description, icon_url)
			 VALUES ($1, $2, $3) RETURNING id`,
			category.Name, category.Description, category.IconURL,
		).Scan(&category.ID)
	}

	res, err := DB.ExecContext(ctx,
		`INSERT INTO categories (category_name, category_description, icon_url) VALUES ($1, $2, $3)`,
		category.Name, category.Description, category.IconURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	category.ID = id
	return nil
}

// TagLesson links a lesson to a category. Already-linked pairs are ignored.
func (r *CategoryRepository) TagLesson(ctx context.Context, lessonID, categoryID int64) error {
	var query string
	if isPostgres() {
		query = "INSERT INTO lesson_categories (lesson_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	} else {
		query = "INSERT OR IGNORE INTO lesson_categories (lesson_id, category_id) VALUES ($1, $2)"
	}
	if _, err := DB.ExecContext(ctx, query, lessonID, categoryID); err != nil {
		return fmt.Errorf("failed to tag lesson: %w", err)
	}
	return nil
}

// TagQuiz links a quiz to a category. Already-linked pairs are ignored.
func (r *CategoryRepository) TagQuiz(ctx context.Context, quizID, categoryID int64) error {
	var query string
	if isPostgres() {
		query = "INSERT INTO quiz_categories (quiz_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	} else {
		query = "INSERT OR IGNORE INTO quiz_categories (quiz_id, category_id) VALUES ($1, $2)"
	}
	if _, err := DB.ExecContext(ctx, query, quizID, categoryID); err != nil {
		return fmt.Errorf("failed to tag quiz: %w", err)
	}
	return nil
}

// GetLessonsByCategory returns the lessons tagged with a category
func (r *CategoryRepository) GetLessonsByCategory(ctx context.Context, categoryID int64) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := DB.SelectContext(ctx, &lessons, `
		SELECT l.* FROM lessons l
		JOIN lesson_categories lc ON lc.lesson_id = l.id
		WHERE lc.category_id = $1
		ORDER BY l.title
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons by category: %w", err)
	}
	return lessons, nil
}
