package database

import (
	"fmt"
	"strings"
)

// schemaTables holds the DDL for every table, with %s standing in for
// the engine-specific autoincrement primary key column.
var schemaTables = []string{
	`CREATE TABLE IF NOT EXISTS students (
		%s,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		cellphone TEXT,
		telegram_chat_id BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		%s,
		lesson_id BIGINT NOT NULL DEFAULT 0,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT 'basic',
		estimated_time INTEGER NOT NULL DEFAULT 0,
		attempts_allowed INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS lessons (
		%s,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		content_md TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT 'basic',
		quiz_id BIGINT NOT NULL DEFAULT 0,
		creator_id BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS lesson_images (
		%s,
		lesson_id BIGINT NOT NULL REFERENCES lessons(id),
		image_url TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		display_line INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		%s,
		quiz_id BIGINT NOT NULL REFERENCES quizzes(id),
		question_text TEXT NOT NULL,
		question_number INTEGER NOT NULL DEFAULT 0,
		question_type TEXT NOT NULL DEFAULT 'multiple_choice',
		weight REAL NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS options (
		%s,
		question_id BIGINT NOT NULL REFERENCES questions(id),
		option_text TEXT NOT NULL,
		is_correct BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		%s,
		category_name TEXT NOT NULL UNIQUE,
		category_description TEXT NOT NULL DEFAULT '',
		icon_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS lesson_categories (
		lesson_id BIGINT NOT NULL REFERENCES lessons(id),
		category_id BIGINT NOT NULL REFERENCES categories(id),
		PRIMARY KEY (lesson_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_categories (
		quiz_id BIGINT NOT NULL REFERENCES quizzes(id),
		category_id BIGINT NOT NULL REFERENCES categories(id),
		PRIMARY KEY (quiz_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		%s,
		student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		quiz_id BIGINT NOT NULL REFERENCES quizzes(id),
		attempt_number INTEGER NOT NULL,
		score REAL NOT NULL DEFAULT 0,
		completion_date TIMESTAMP,
		UNIQUE (student_id, quiz_id, attempt_number)
	)`,
	`CREATE TABLE IF NOT EXISTS answers (
		%s,
		quiz_attempt_id BIGINT NOT NULL DEFAULT 0,
		student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		question_id BIGINT NOT NULL REFERENCES questions(id),
		option_id BIGINT NOT NULL REFERENCES options(id),
		is_correct BOOLEAN NOT NULL,
		reviewed_at TIMESTAMP NOT NULL,
		next_review TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS spaced_repetition_schedule (
		%s,
		student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		question_id BIGINT NOT NULL REFERENCES questions(id),
		due_date TIMESTAMP NOT NULL,
		review_interval INTEGER NOT NULL DEFAULT 1,
		times_repeated INTEGER NOT NULL DEFAULT 0,
		easiness_factor REAL NOT NULL DEFAULT 2.5,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (student_id, question_id)
	)`,
	`CREATE TABLE IF NOT EXISTS question_tracking (
		%s,
		student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		question_id BIGINT NOT NULL REFERENCES questions(id),
		times_answered INTEGER NOT NULL DEFAULT 0,
		times_answered_correctly INTEGER NOT NULL DEFAULT 0,
		last_answered TIMESTAMP,
		next_review TIMESTAMP,
		is_due BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (student_id, question_id)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_progress (
		%s,
		student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		quiz_id BIGINT NOT NULL REFERENCES quizzes(id),
		score REAL NOT NULL DEFAULT 0,
		attempts INTEGER NOT NULL DEFAULT 0,
		time_spent INTEGER NOT NULL DEFAULT 0,
		last_completed TIMESTAMP,
		accuracy_rate REAL NOT NULL DEFAULT 0,
		UNIQUE (student_id, quiz_id)
	)`,
	`CREATE TABLE IF NOT EXISTS lesson_progress (
		%s,
		student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		lesson_id BIGINT NOT NULL REFERENCES lessons(id),
		lesson_completed BOOLEAN NOT NULL DEFAULT FALSE,
		quiz_completed BOOLEAN NOT NULL DEFAULT FALSE,
		start_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		completion_date TIMESTAMP,
		UNIQUE (student_id, lesson_id)
	)`,
	`CREATE TABLE IF NOT EXISTS study_history (
		%s,
		session_id TEXT NOT NULL,
		student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		lesson_id BIGINT NOT NULL DEFAULT 0,
		quiz_id BIGINT NOT NULL DEFAULT 0,
		content_type TEXT NOT NULL,
		time_spent INTEGER NOT NULL DEFAULT 0,
		success_rate REAL NOT NULL DEFAULT 0,
		session_date TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_tracking (
		%s,
		student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		lesson_id BIGINT NOT NULL DEFAULT 0,
		last_quiz_id BIGINT NOT NULL DEFAULT 0,
		total_quizzes_completed INTEGER NOT NULL DEFAULT 0,
		average_score REAL NOT NULL DEFAULT 0,
		last_activity TIMESTAMP,
		next_repetition TIMESTAMP,
		next_question_id BIGINT NOT NULL DEFAULT 0,
		total_time_spent INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (student_id)
	)`,
}

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_schedule_due ON spaced_repetition_schedule (student_id, due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_student ON answers (student_id, question_id)`,
	`CREATE INDEX IF NOT EXISTS idx_history_student ON study_history (student_id, session_date)`,
}

// initializeSchema creates the tables and indexes if they don't exist.
func initializeSchema() error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if isPostgres() {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	for _, ddl := range schemaTables {
		stmt := ddl
		if strings.Contains(ddl, "%s") {
			stmt = fmt.Sprintf(ddl, idColumn)
		}
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	for _, ddl := range schemaIndexes {
		if _, err := DB.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
