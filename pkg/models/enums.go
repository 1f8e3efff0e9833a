package models

// Difficulty is the difficulty level of a lesson or quiz.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// QuestionType classifies how a question is presented and answered.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillInTheBlank QuestionType = "fill_in_the_blank"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, TrueFalse, FillInTheBlank:
		return true
	}
	return false
}

// ContentType identifies what kind of content a study session covered.
type ContentType string

const (
	ContentLesson ContentType = "lesson"
	ContentQuiz   ContentType = "quiz"
)

// Valid reports whether c is one of the known content types.
func (c ContentType) Valid() bool {
	switch c {
	case ContentLesson, ContentQuiz:
		return true
	}
	return false
}
