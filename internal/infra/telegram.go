package infra

import (
	"fmt"

	"comanda/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier posts messages and documents to the owner's Telegram chat.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier returns nil, nil when Telegram is not configured.
func NewNotifier(cfg *config.Config) (*Notifier, error) {
	if !cfg.TelegramEnabled() {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Notifier{api: api, chatID: cfg.TelegramChatID}, nil
}

// Send posts text, then the file at pdfPath as a document when set.
func (n *Notifier) Send(text, pdfPath string) error {
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	if pdfPath == "" {
		return nil
	}
	if _, err := n.api.Send(tgbotapi.NewDocument(n.chatID, tgbotapi.FilePath(pdfPath))); err != nil {
		return fmt.Errorf("telegram: send document: %w", err)
	}
	return nil
}
