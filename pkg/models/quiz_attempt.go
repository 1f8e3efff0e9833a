package models

import "time"

// QuizAttempt is one scored pass through a quiz. Immutable once the
// completion date is set.
type QuizAttempt struct {
	ID             int64     `json:"id" db:"id"`
	StudentID      int64     `json:"student_id" db:"student_id"`
	QuizID         int64     `json:"quiz_id" db:"quiz_id"`
	AttemptNumber  int       `json:"attempt_number" db:"attempt_number"`
	Score          float64   `json:"score" db:"score"` // Weighted fraction correct, 2 decimal places
	CompletionDate time.Time `json:"completion_date" db:"completion_date"`
}
