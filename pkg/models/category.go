package models

// Category tags lessons and quizzes for browsing.
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"category_name"`
	Description string `json:"description" db:"category_description"`
	IconURL     string `json:"icon_url" db:"icon_url"`
}

// LessonCategory links a lesson to a category.
type LessonCategory struct {
	LessonID   int64 `json:"lesson_id" db:"lesson_id"`
	CategoryID int64 `json:"category_id" db:"category_id"`
}

// QuizCategory links a quiz to a category.
type QuizCategory struct {
	QuizID     int64 `json:"quiz_id" db:"quiz_id"`
	CategoryID int64 `json:"category_id" db:"category_id"`
}
