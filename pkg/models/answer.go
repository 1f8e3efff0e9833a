package models

import "time"

// Answer is a single submitted response to a question. Rows are
// append-only and never mutated after insertion. AttemptID links the
// answer to a quiz attempt when it was part of one; zero for ad-hoc
// review answers.
type Answer struct {
	ID         int64     `json:"id" db:"id"`
	AttemptID  int64     `json:"attempt_id" db:"quiz_attempt_id"`
	StudentID  int64     `json:"student_id" db:"student_id"`
	QuestionID int64     `json:"question_id" db:"question_id"`
	OptionID   int64     `json:"option_id" db:"option_id"`
	IsCorrect  bool      `json:"is_correct" db:"is_correct"`
	ReviewedAt time.Time `json:"reviewed_at" db:"reviewed_at"`
	NextReview time.Time `json:"next_review" db:"next_review"` // Due date computed from this answer
}
