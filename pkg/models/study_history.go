package models

import "time"

// StudyHistory is one immutable audit record of a completed study
// session. The scheduling core only appends these; analytics
// collaborators read them.
type StudyHistory struct {
	ID          int64       `json:"id" db:"id"`
	SessionID   string      `json:"session_id" db:"session_id"` // UUID assigned at session start
	StudentID   int64       `json:"student_id" db:"student_id"`
	LessonID    int64       `json:"lesson_id" db:"lesson_id"` // Zero when the session covered a quiz only
	QuizID      int64       `json:"quiz_id" db:"quiz_id"`     // Zero when the session covered a lesson only
	ContentType ContentType `json:"content_type" db:"content_type"`
	TimeSpent   int         `json:"time_spent" db:"time_spent"` // Seconds
	SuccessRate float64     `json:"success_rate" db:"success_rate"`
	SessionDate time.Time   `json:"session_date" db:"session_date"`
}
