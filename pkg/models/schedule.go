package models

import "time"

// Schedule is the spaced-repetition state for one (student, question)
// pair. A row exists only after the student's first answer to the
// question; every later answer updates it. Rows are never deleted
// while the student exists.
type Schedule struct {
	ID             int64     `json:"id" db:"id"`
	StudentID      int64     `json:"student_id" db:"student_id"`
	QuestionID     int64     `json:"question_id" db:"question_id"`
	DueDate        time.Time `json:"due_date" db:"due_date"`
	ReviewInterval int       `json:"review_interval" db:"review_interval"` // Days until the next review, >= 1
	TimesRepeated  int       `json:"times_repeated" db:"times_repeated"`   // Consecutive successful reviews
	EasinessFactor float64   `json:"easiness_factor" db:"easiness_factor"` // SM-2 EF, clamped to >= 1.3
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
