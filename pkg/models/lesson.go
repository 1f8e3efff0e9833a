package models

import "time"

// Lesson is a unit of study content. Lessons are reference data: they
// are read by many students and never owned by any of them.
type Lesson struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	ContentMD   string     `json:"content_md" db:"content_md"` // Markdown body of the lesson
	Difficulty  Difficulty `json:"difficulty" db:"difficulty"`
	QuizID      int64      `json:"quiz_id" db:"quiz_id"` // Quiz that closes the lesson, 0 if none
	CreatorID   int64      `json:"creator_id" db:"creator_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastUpdated time.Time  `json:"last_updated" db:"last_updated"`
}

// LessonImage is an illustration embedded into a lesson at a given line.
type LessonImage struct {
	ID          int64  `json:"id" db:"id"`
	LessonID    int64  `json:"lesson_id" db:"lesson_id"`
	ImageURL    string `json:"image_url" db:"image_url"`
	Description string `json:"description" db:"description"`
	DisplayLine int    `json:"display_line" db:"display_line"`
}
