package models

import "time"

// UserTracking is the per-student denormalized rollup. It caches
// aggregates derived from attempts, schedules and study history and
// must always be re-derivable from those source rows; it is never a
// second source of truth.
type UserTracking struct {
	ID                    int64      `json:"id" db:"id"`
	StudentID             int64      `json:"student_id" db:"student_id"`
	LessonID              int64      `json:"lesson_id" db:"lesson_id"`       // Lesson of the most recent activity
	LastQuizID            int64      `json:"last_quiz_id" db:"last_quiz_id"` // Quiz of the latest attempt
	TotalQuizzesCompleted int        `json:"total_quizzes_completed" db:"total_quizzes_completed"`
	AverageScore          float64    `json:"average_score" db:"average_score"`
	LastActivity          *time.Time `json:"last_activity" db:"last_activity"`
	NextRepetition        *time.Time `json:"next_repetition" db:"next_repetition"` // Earliest due date across schedules
	NextQuestionID        int64      `json:"next_question_id" db:"next_question_id"`
	TotalTimeSpent        int        `json:"total_time_spent" db:"total_time_spent"` // Seconds
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}
