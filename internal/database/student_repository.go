package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studybot/pkg/errs"
	"github.com/example/studybot/pkg/models"
)

// StudentRepository handles database operations for students
type StudentRepository struct{}

// NewStudentRepository creates a new repository instance
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{}
}

// GetByID returns a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	err := DB.GetContext(ctx, &student, "SELECT * FROM students WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "student", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

// GetAll returns all students
func (r *StudentRepository) GetAll(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := DB.SelectContext(ctx, &students, "SELECT * FROM students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get students: %w", err)
	}
	return students, nil
}

// Create inserts a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if isPostgres() {
		return DB.QueryRowContext(ctx,
			`INSERT INTO students (name, email, cellphone) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
			student.Name, student.Email, student.Cellphone,
		).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	}

	res, err := DB.ExecContext(ctx,
		`INSERT INTO students (name, email, cellphone) VALUES ($1, $2, $3)`,
		student.Name, student.Email, student.Cellphone,
	)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	student.ID = id
	return DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM students WHERE id = $1", id,
	).Scan(&student.CreatedAt, &student.UpdatedAt)
}

// SetTelegramChat links the chat used for due-review reminders.
// A zero chat ID disables reminders for the student.
func (r *StudentRepository) SetTelegramChat(ctx context.Context, studentID, chatID int64) error {
	_, err := DB.ExecContext(ctx,
		"UPDATE students SET telegram_chat_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2",
		chatID, studentID)
	if err != nil {
		return fmt.Errorf("failed to set telegram chat: %w", err)
	}
	return nil
}

// Delete removes a student. Owned progress, tracking and schedule rows
// cascade with the student.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return nil
}
