package models

import "time"

// QuizProgress is the rolling aggregate for one (student, quiz) pair,
// mutated by every completed attempt. Attempts is monotonically
// non-decreasing.
type QuizProgress struct {
	ID            int64     `json:"id" db:"id"`
	StudentID     int64     `json:"student_id" db:"student_id"`
	QuizID        int64     `json:"quiz_id" db:"quiz_id"`
	Score         float64   `json:"score" db:"score"` // Score of the latest attempt
	Attempts      int       `json:"attempts" db:"attempts"`
	TimeSpent     int       `json:"time_spent" db:"time_spent"` // Accumulated seconds
	LastCompleted time.Time `json:"last_completed" db:"last_completed"`
	AccuracyRate  float64   `json:"accuracy_rate" db:"accuracy_rate"` // Running mean of per-attempt scores
}
