package models

import "time"

// QuestionTracking accumulates lifetime statistics for one
// (student, question) pair. It is updated in lockstep with the
// spaced-repetition schedule for the same pair.
type QuestionTracking struct {
	ID            int64     `json:"id" db:"id"`
	StudentID     int64     `json:"student_id" db:"student_id"`
	QuestionID    int64     `json:"question_id" db:"question_id"`
	TimesAnswered int       `json:"times_answered" db:"times_answered"`
	TimesCorrect  int       `json:"times_correct" db:"times_answered_correctly"`
	LastAnswered  time.Time `json:"last_answered" db:"last_answered"`
	NextReview    time.Time `json:"next_review" db:"next_review"`
	IsDue         bool      `json:"is_due" db:"is_due"` // Derived: next_review <= now
}
