package models

import "time"

// LessonProgress tracks one student's path through one lesson.
// CompletionDate is stamped exactly once, on the first transition to
// fully complete (lesson viewed AND quiz passed), and never
// overwritten by later activity.
type LessonProgress struct {
	ID              int64      `json:"id" db:"id"`
	StudentID       int64      `json:"student_id" db:"student_id"`
	LessonID        int64      `json:"lesson_id" db:"lesson_id"`
	LessonCompleted bool       `json:"lesson_completed" db:"lesson_completed"`
	QuizCompleted   bool       `json:"quiz_completed" db:"quiz_completed"`
	StartDate       time.Time  `json:"start_date" db:"start_date"`
	CompletionDate  *time.Time `json:"completion_date" db:"completion_date"`
}

// FullyComplete reports whether both the lesson content and its quiz
// are done.
func (p *LessonProgress) FullyComplete() bool {
	return p.LessonCompleted && p.QuizCompleted
}
