package models

import "time"

// Quiz groups the questions that close a lesson. AttemptsAllowed caps
// how many scored attempts a student may record; zero means unlimited.
type Quiz struct {
	ID              int64      `json:"id" db:"id"`
	LessonID        int64      `json:"lesson_id" db:"lesson_id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	Difficulty      Difficulty `json:"difficulty" db:"difficulty"`
	EstimatedTime   int        `json:"estimated_time" db:"estimated_time"` // Minutes to complete
	AttemptsAllowed int        `json:"attempts_allowed" db:"attempts_allowed"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}
