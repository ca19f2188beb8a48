// ABOUTME: Telegram transport adapter over go-telegram-bot-api
// ABOUTME: Long-polls for updates, normalizes them into bot events, implements the outbound Transport

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/studybuddy/studybuddy/internal/bot"
)

// Handler processes normalized inbound events.
type Handler interface {
	HandleEvent(ctx context.Context, ev bot.Event) error
}

// dispatchGrace is added on top of the request timeout when bounding a single
// update, so follow-up sends (fallback answers, apologies) still fit inside
// the dispatch deadline after a remote call has timed out.
const dispatchGrace = 10 * time.Second

// Bot is the Telegram frontend: it converts platform updates into bot.Events
// and sends the controller's outbound messages back through the Bot API.
type Bot struct {
	api         *tgbotapi.BotAPI
	handler     Handler
	pollTimeout int
	// handleTimeout bounds the processing of a single update
	handleTimeout time.Duration
	logger        *slog.Logger
}

var _ bot.Transport = (*Bot)(nil)

// New connects to the Telegram Bot API. requestTimeout bounds every outbound
// API call; pollTimeoutSeconds is the getUpdates long-poll window.
// The handler is wired afterwards with SetHandler, since the controller needs
// the Bot as its Transport before it can exist.
func New(token string, pollTimeoutSeconds int, requestTimeout time.Duration) (*Bot, error) {
	client := &http.Client{Timeout: requestTimeout + time.Duration(pollTimeoutSeconds)*time.Second}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	return &Bot{
		api:           api,
		pollTimeout:   pollTimeoutSeconds,
		handleTimeout: requestTimeout + dispatchGrace,
		logger:        slog.Default().With("component", "telegram"),
	}, nil
}

// SetHandler wires the event handler; must be called before Run.
func (b *Bot) SetHandler(h Handler) {
	b.handler = h
}

// Username returns the authorized bot account name.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run long-polls for updates until ctx is canceled. Each update is handled on
// its own goroutine, so events for different users proceed in parallel and the
// same user can race (the controller's stores serialize per user).
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("telegram transport started", "bot", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			ev, ok := convert(update)
			if !ok {
				continue
			}

			go b.dispatch(ctx, update, ev)
		}
	}
}

// dispatch handles one update with a bounded timeout.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update, ev bot.Event) {
	ctx, cancel := context.WithTimeout(ctx, b.handleTimeout)
	defer cancel()

	// Acknowledge callback presses so the client stops its spinner.
	if update.CallbackQuery != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			b.logger.Warn("answering callback query", "error", err)
		}
	}

	if err := b.handler.HandleEvent(ctx, ev); err != nil {
		b.logger.Error("handling update", "kind", ev.Kind, "user_id", ev.UserID, "error", err)
	}
}

// convert normalizes a Telegram update into a bot.Event.
// Updates that carry neither a command, a callback press, nor text are dropped.
func convert(update tgbotapi.Update) (bot.Event, bool) {
	if cq := update.CallbackQuery; cq != nil && cq.Message != nil {
		return bot.Event{
			Kind:      bot.EventCallback,
			EventID:   cq.ID,
			ChatID:    cq.Message.Chat.ID,
			UserID:    cq.From.ID,
			Username:  cq.From.UserName,
			Data:      cq.Data,
			MessageID: cq.Message.MessageID,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return bot.Event{}, false
	}

	ev := bot.Event{
		EventID:  strconv.Itoa(update.UpdateID),
		ChatID:   msg.Chat.ID,
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
	}

	if msg.IsCommand() {
		ev.Kind = bot.EventCommand
		ev.Command = msg.Command()
		return ev, true
	}

	if msg.Text != "" {
		ev.Kind = bot.EventText
		ev.Text = msg.Text
		return ev, true
	}

	return bot.Event{}, false
}

// SendText sends a plain text message.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	return b.send(ctx, msg)
}

// SendMarkdown sends a Markdown-formatted message.
func (b *Bot) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return b.send(ctx, msg)
}

// SendKeyboard sends a message with an inline keyboard attached.
func (b *Bot) SendKeyboard(ctx context.Context, chatID int64, text string, keyboard [][]bot.Button) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = toInlineKeyboard(keyboard)
	return b.send(ctx, msg)
}

// EditKeyboard replaces the text and keyboard of an existing message.
func (b *Bot) EditKeyboard(ctx context.Context, chatID int64, messageID int, text string, keyboard [][]bot.Button) error {
	if keyboard == nil {
		return b.send(ctx, tgbotapi.NewEditMessageText(chatID, messageID, text))
	}
	return b.send(ctx, tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, toInlineKeyboard(keyboard)))
}

// send performs one Bot API call, honoring context cancellation. The library
// itself is not context-aware; the HTTP client timeout bounds the call.
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := b.api.Send(c); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// toInlineKeyboard converts controller buttons into the platform markup.
func toInlineKeyboard(keyboard [][]bot.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
