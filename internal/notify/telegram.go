package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/studybot/internal/database"
)

// TelegramNotifier sends due-review reminders over Telegram to
// students who linked a chat. It implements scheduler.Notifier.
type TelegramNotifier struct {
	api      *tgbotapi.BotAPI
	students *database.StudentRepository
}

// NewTelegramNotifier creates a notifier with the given bot token
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{
		api:      api,
		students: database.NewStudentRepository(),
	}, nil
}

// SendDueReminder tells the student how many questions await review.
// Students without a linked chat are silently skipped.
func (n *TelegramNotifier) SendDueReminder(studentID int64, count int) error {
	student, err := n.students.GetByID(context.Background(), studentID)
	if err != nil {
		return err
	}
	if student.TelegramChatID == 0 {
		return nil
	}

	text := fmt.Sprintf("You have %d question(s) due for review. A short session now keeps them fresh!", count)
	msg := tgbotapi.NewMessage(student.TelegramChatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	return nil
}
