package models

// Question is a single quiz item. Weight is its relative contribution
// to the quiz score.
type Question struct {
	ID             int64        `json:"id" db:"id"`
	QuizID         int64        `json:"quiz_id" db:"quiz_id"`
	Text           string       `json:"text" db:"question_text"`
	QuestionNumber int          `json:"question_number" db:"question_number"`
	Type           QuestionType `json:"type" db:"question_type"`
	Weight         float64      `json:"weight" db:"weight"`
}

// Option is one selectable answer to a question.
type Option struct {
	ID         int64  `json:"id" db:"id"`
	QuestionID int64  `json:"question_id" db:"question_id"`
	Text       string `json:"text" db:"option_text"`
	IsCorrect  bool   `json:"is_correct" db:"is_correct"`
}
