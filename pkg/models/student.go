package models

import "time"

// Student represents an enrolled learner. A student owns all of its
// progress, tracking and schedule rows; deleting a student cascades
// to every owned row.
type Student struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	Cellphone      string    `json:"cellphone" db:"cellphone"`
	TelegramChatID int64     `json:"telegram_chat_id" db:"telegram_chat_id"` // Zero disables reminders
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
