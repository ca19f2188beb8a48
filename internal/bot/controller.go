// ABOUTME: Interaction controller routing inbound events to handlers
// ABOUTME: Drives the selection flow, resource listings, and free-text questions

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/studybuddy/studybuddy/internal/dedupe"
	"github.com/studybuddy/studybuddy/internal/store"
	"github.com/studybuddy/studybuddy/internal/subjects"
)

// User-facing messages. The assistant speaks Russian.
const (
	helpText = "Привет! Я StudyBuddy, твой помощник в учебе с поддержкой искусственного интеллекта.\n" +
		"Ты можешь задавать мне вопросы или запрашивать учебные материалы по любимым предметам.\n\n" +
		"Вот команды, которые ты можешь использовать:\n" +
		"/start - Приветственное сообщение\n" +
		"/help - Показать это сообщение помощи\n" +
		"/setsubjects - Установить интересующие тебя предметы\n" +
		"/resources - Получить учебные материалы\n" +
		"Или просто задай свой вопрос, и я постараюсь помочь!"

	chooseSubjectsText  = "Выбери интересующие тебя предметы и нажми «Готово»:"
	emptySelectionText  = "Выбери хотя бы один предмет, прежде чем нажимать «Готово»."
	noSelectionText     = "Сначала открой выбор предметов командой /setsubjects."
	unknownSubjectText  = "Этот предмет мне не знаком."
	setTopicsFailedText = "Произошла ошибка при установке твоих предметов. Пожалуйста, попробуй снова."

	noTopicsText        = "Ты еще не установил свои предметы. Используй команду /setsubjects, чтобы указать свои интересы."
	noResourcesText     = "Не найдено материалов по твоим предметам."
	resourcesFailedText = "Произошла ошибка при получении материалов. Пожалуйста, попробуй снова."

	thinkingText       = "Дай мне подумать над этим..."
	unknownCommandText = "Я не знаю такой команды. Посмотри /help."
)

// Dedupe window for redelivered callback events.
const (
	callbackDedupeTTL  = 5 * time.Minute
	callbackDedupeSize = 4096
)

// Assistant answers free-text questions. Implementations must return a
// user-presentable answer even on failure (see gigachat.Client.Ask).
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Controller routes inbound events: it drives the selection state machine,
// reads and commits durable preferences, and forwards questions to the
// assistant.
type Controller struct {
	transport  Transport
	selections *subjects.Store
	store      store.Store
	assistant  Assistant
	seen       *dedupe.Cache
	logger     *slog.Logger
}

// New creates a controller wired to the given collaborators.
func New(transport Transport, selections *subjects.Store, st store.Store, assistant Assistant) *Controller {
	return &Controller{
		transport:  transport,
		selections: selections,
		store:      st,
		assistant:  assistant,
		seen:       dedupe.New(callbackDedupeTTL, callbackDedupeSize),
		logger:     slog.Default().With("component", "bot"),
	}
}

// HandleEvent processes one inbound event. Domain failures are recovered into
// user-visible messages and logged; only transport send failures propagate.
func (c *Controller) HandleEvent(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventCommand:
		return c.handleCommand(ctx, ev)
	case EventCallback:
		return c.handleCallback(ctx, ev)
	case EventText:
		return c.handleQuestion(ctx, ev)
	default:
		c.logger.Warn("unhandled event kind", "kind", ev.Kind)
		return nil
	}
}

func (c *Controller) handleCommand(ctx context.Context, ev Event) error {
	switch ev.Command {
	case "start", "help":
		return c.transport.SendText(ctx, ev.ChatID, helpText)

	case "setsubjects":
		c.selections.Start(ev.UserID)
		return c.transport.SendKeyboard(ctx, ev.ChatID, chooseSubjectsText, selectionKeyboard(nil))

	case "resources":
		return c.handleResources(ctx, ev)

	default:
		return c.transport.SendText(ctx, ev.ChatID, unknownCommandText)
	}
}

func (c *Controller) handleCallback(ctx context.Context, ev Event) error {
	// Rapid double-taps get redelivered by the transport; process each
	// callback event once.
	if ev.EventID != "" && c.seen.CheckAndMark("callback:"+ev.EventID) {
		c.logger.Debug("duplicate callback ignored", "event_id", ev.EventID)
		return nil
	}

	switch {
	case ev.Data == doneData:
		return c.commitSelection(ctx, ev)

	case strings.HasPrefix(ev.Data, subjectPrefix):
		return c.toggleSubject(ctx, ev, strings.TrimPrefix(ev.Data, subjectPrefix))

	default:
		c.logger.Warn("unknown callback payload", "data", ev.Data, "user_id", ev.UserID)
		return nil
	}
}

func (c *Controller) toggleSubject(ctx context.Context, ev Event, subject string) error {
	err := c.selections.Toggle(ev.UserID, subject)
	switch {
	case errors.Is(err, subjects.ErrNoSelection):
		return c.transport.SendText(ctx, ev.ChatID, noSelectionText)
	case errors.Is(err, subjects.ErrUnknownSubject):
		c.logger.Warn("toggle of unknown subject", "subject", subject, "user_id", ev.UserID)
		return c.transport.SendText(ctx, ev.ChatID, unknownSubjectText)
	case err != nil:
		return fmt.Errorf("toggling subject: %w", err)
	}

	chosen, err := c.selections.Chosen(ev.UserID)
	if err != nil {
		// Selection vanished between toggle and render (commit or restart
		// racing on another goroutine); nothing left to redraw.
		c.logger.Debug("selection gone before re-render", "user_id", ev.UserID)
		return nil
	}

	return c.transport.EditKeyboard(ctx, ev.ChatID, ev.MessageID, chooseSubjectsText, selectionKeyboard(chosen))
}

func (c *Controller) commitSelection(ctx context.Context, ev Event) error {
	var committed []string
	err := c.selections.Commit(ctx, ev.UserID, func(ctx context.Context, chosen []string) error {
		if err := c.store.SetUserTopics(ctx, ev.UserID, ev.Username, chosen); err != nil {
			return err
		}
		committed = chosen
		return nil
	})

	switch {
	case errors.Is(err, subjects.ErrEmptySelection):
		return c.transport.SendText(ctx, ev.ChatID, emptySelectionText)
	case errors.Is(err, subjects.ErrNoSelection):
		return c.transport.SendText(ctx, ev.ChatID, noSelectionText)
	case err != nil:
		// Persistence failed; the pending selection is preserved for retry.
		c.logger.Error("committing selection", "user_id", ev.UserID, "error", err)
		return c.transport.SendText(ctx, ev.ChatID, setTopicsFailedText)
	}

	confirmation := "Твои предметы установлены: " + strings.Join(committed, ", ")
	return c.transport.EditKeyboard(ctx, ev.ChatID, ev.MessageID, confirmation, nil)
}

func (c *Controller) handleResources(ctx context.Context, ev Event) error {
	topics, err := c.store.GetUserTopics(ctx, ev.UserID)
	if errors.Is(err, store.ErrUserNotFound) || (err == nil && len(topics) == 0) {
		return c.transport.SendText(ctx, ev.ChatID, noTopicsText)
	}
	if err != nil {
		c.logger.Error("reading user topics", "user_id", ev.UserID, "error", err)
		return c.transport.SendText(ctx, ev.ChatID, resourcesFailedText)
	}

	resources, err := c.store.ListResourcesBySubjects(ctx, topics)
	if err != nil {
		c.logger.Error("listing resources", "user_id", ev.UserID, "error", err)
		return c.transport.SendText(ctx, ev.ChatID, resourcesFailedText)
	}

	if len(resources) == 0 {
		return c.transport.SendText(ctx, ev.ChatID, noResourcesText)
	}

	return c.transport.SendMarkdown(ctx, ev.ChatID, formatResources(resources))
}

func (c *Controller) handleQuestion(ctx context.Context, ev Event) error {
	if err := c.transport.SendText(ctx, ev.ChatID, thinkingText); err != nil {
		return err
	}

	answer, err := c.assistant.Ask(ctx, ev.Text)
	if err != nil {
		// The assistant already substituted its fallback answer; the cause
		// is only for the operator.
		c.logger.Error("answering question", "user_id", ev.UserID, "error", err)
	}

	// When the assistant call ran the dispatch deadline down, the answer or
	// fallback must still reach the user; the transport's own timeout bounds
	// the send.
	return c.transport.SendText(context.WithoutCancel(ctx), ev.ChatID, answer)
}
