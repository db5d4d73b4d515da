package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"github.com/aatumaykin/cronalarm/internal/retry"
)

// ErrTelegram is returned when a Telegram message could not be delivered.
var ErrTelegram = errors.New("telegram delivery failed")

// BotAPI is the part of the Telegram bot API the notifier needs.
// *telego.Bot satisfies it; tests substitute a fake.
type BotAPI interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramNotifier sends notifications to a single Telegram chat.
type TelegramNotifier struct {
	bot     BotAPI
	chatID  int64
	timeout time.Duration

	// Retry controls repeated delivery on transient errors (rate limits, 5xx,
	// timeouts). Each attempt gets its own timeout.
	Retry retry.Config
}

// NewTelegramNotifier creates a notifier backed by a telego bot for token.
func NewTelegramNotifier(token string, chatID int64, timeout time.Duration) (*TelegramNotifier, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewTelegramNotifierWithBot(bot, chatID, timeout), nil
}

// NewTelegramNotifierWithBot creates a notifier around an existing bot.
func NewTelegramNotifierWithBot(bot BotAPI, chatID int64, timeout time.Duration) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, timeout: timeout}
}

// Notify implements Notifier.
func (t *TelegramNotifier) Notify(ctx context.Context, n Notification) error {
	params := &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: t.chatID},
		Text:   n.Text(),
	}

	err := retry.Do(ctx, t.Retry, func(ctx context.Context) error {
		return t.send(ctx, params)
	})
	if err != nil {
		return fmt.Errorf("%w: chat %d: %w", ErrTelegram, t.chatID, err)
	}
	return nil
}

func (t *TelegramNotifier) send(ctx context.Context, params *telego.SendMessageParams) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	_, err := t.bot.SendMessage(ctx, params)
	return err
}
