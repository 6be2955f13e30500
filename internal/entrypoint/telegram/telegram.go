package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cbrbot/internal/entity"
	"cbrbot/internal/metrics"
	"cbrbot/internal/usecase"
)

const (
	pollTimeout = 60
	queueSize   = 64
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type updatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type conversation interface {
	Handle(ctx context.Context, event entity.UserEvent) []entity.OutboundMessage
}

type Bot struct {
	api     sender
	updates updatesSource

	idempotenceUsecase *usecase.Idempotence
	conversation       conversation

	dispatcher *dispatcher
	log        *slog.Logger
}

func New(
	token string,
	workers int,
	idempotenceUsecase *usecase.Idempotence,
	conversation *usecase.Conversation,
	log *slog.Logger,
) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info("authorized on telegram", slog.String("username", botAPI.Self.UserName))

	return newBot(botAPI, botAPI, workers, idempotenceUsecase, conversation, log), nil
}

func newBot(
	api sender,
	updates updatesSource,
	workers int,
	idempotenceUsecase *usecase.Idempotence,
	conversation conversation,
	log *slog.Logger,
) *Bot {
	b := &Bot{
		api:     api,
		updates: updates,

		idempotenceUsecase: idempotenceUsecase,
		conversation:       conversation,

		log: log,
	}
	b.dispatcher = newDispatcher(workers, queueSize, b.process, log)
	return b
}

// Run long-polls telegram until ctx is canceled, then waits for the events
// already accepted to be answered.
func (b *Bot) Run(ctx context.Context) error {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = pollTimeout

	updates := b.updates.GetUpdatesChan(config)
	b.dispatcher.start(ctx)
	defer b.dispatcher.stop()

	b.log.Info("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.updates.StopReceivingUpdates()
			b.log.Info("telegram bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate turns one update into an event and queues it for its user.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if ok, err := b.checkIfFirstHandle(update); err != nil {
		b.log.Warn("idempotence check failed",
			slog.Int("update_id", update.UpdateID),
			slog.String("error", err.Error()))
	} else if !ok {
		metrics.UpdatesTotal.WithLabelValues("duplicate").Inc()
		return
	}

	event, from, ok := eventFromUpdate(update)
	if !ok {
		metrics.UpdatesTotal.WithLabelValues("ignored").Inc()
		return
	}

	if update.CallbackQuery != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			b.log.Warn("failed to answer callback", slog.String("error", err.Error()))
		}
	}

	if err := b.dispatcher.submit(ctx, job{event: event, origin: from}); err != nil {
		metrics.UpdatesTotal.WithLabelValues("dropped").Inc()
		return
	}
	metrics.UpdatesTotal.WithLabelValues("accepted").Inc()
}

func (b *Bot) checkIfFirstHandle(update tgbotapi.Update) (bool, error) {
	if b.idempotenceUsecase == nil {
		return true, nil
	}
	return b.idempotenceUsecase.Execute("telegram:" + strconv.Itoa(update.UpdateID))
}

func eventFromUpdate(update tgbotapi.Update) (entity.UserEvent, origin, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		message := update.Message
		command := ""
		if message.IsCommand() {
			command = message.Command()
		}
		return entity.UserEvent{
			UserID: message.From.ID,
			Source: entity.SourceText,
			Action: textAction(message.Text, command),
		}, origin{chatID: message.Chat.ID}, true

	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		query := update.CallbackQuery
		return entity.UserEvent{
			UserID: query.From.ID,
			Source: entity.SourceButton,
			Action: decodeAction(query.Data),
		}, origin{chatID: query.Message.Chat.ID, messageID: query.Message.MessageID}, true
	}

	return entity.UserEvent{}, origin{}, false
}

func (b *Bot) process(ctx context.Context, j job) {
	messages := b.conversation.Handle(ctx, j.event)

	for i, msg := range messages {
		r := replyFromMessage(msg)

		if i == 0 && j.origin.messageID != 0 && !r.menu {
			err := b.send(r.editMessage(j.origin.chatID, j.origin.messageID))
			if err == nil || isNotModified(err) {
				continue
			}
			b.log.Warn("failed to edit message, sending a new one",
				slog.Int64("chat_id", j.origin.chatID),
				slog.String("error", err.Error()))
		}

		if err := b.send(r.newMessage(j.origin.chatID)); err != nil {
			b.log.Error("failed to send message",
				slog.Int64("chat_id", j.origin.chatID),
				slog.String("error", err.Error()))
		}
	}
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	_, err := b.api.Send(c)
	return err
}

// isNotModified reports telegram's refusal to edit a message into identical content.
func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, "message is not modified")
	}
	return strings.Contains(err.Error(), "message is not modified")
}
