package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cbrbot/internal/entity"
	"cbrbot/internal/metrics"
)

type textHandler func(ctx context.Context, userID int64, state *entity.ConversationState, text string) []entity.OutboundMessage

// Conversation is the per-user state machine of the bot. Handle may be
// called concurrently; events of one user are applied one at a time.
type Conversation struct {
	set        entity.CurrencySet
	fetchRates *FetchRates

	recordConversion *RecordConversion
	listConversions  *ListConversions

	sessions *sessions
	onText   map[entity.Step]textHandler

	now func() time.Time
	log *slog.Logger
}

func NewConversation(
	set entity.CurrencySet,
	fetchRates *FetchRates,
	recordConversion *RecordConversion,
	listConversions *ListConversions,
	log *slog.Logger,
) *Conversation {
	c := &Conversation{
		set:        set,
		fetchRates: fetchRates,

		recordConversion: recordConversion,
		listConversions:  listConversions,

		sessions: newSessions(),
		now:      time.Now,
		log:      log,
	}

	c.onText = map[entity.Step]textHandler{
		entity.StepAwaitingAmount: c.enterAmount,
		entity.StepAwaitingDate:   c.enterDate,
	}

	return c
}

func (c *Conversation) Handle(ctx context.Context, event entity.UserEvent) []entity.OutboundMessage {
	started := time.Now()

	entry := c.sessions.acquire(event.UserID, c.now())
	defer c.sessions.release(entry, c.now())

	state := &entry.state
	from := state.CurrentStep()

	replies := c.dispatch(ctx, event.UserID, state, event.Action)

	if !state.Onboarded {
		state.Onboarded = true
		replies = append(replies, onboardingMessage())
	}

	c.log.Debug("event handled",
		slog.Int64("user_id", event.UserID),
		slog.String("action", event.Action.Kind.String()),
		slog.String("from", string(from)),
		slog.String("to", string(state.CurrentStep())))
	metrics.EventDuration.WithLabelValues(event.Action.Kind.String()).Observe(time.Since(started).Seconds())

	return replies
}

// Sweep forgets sessions that saw no event since idleBefore.
func (c *Conversation) Sweep(idleBefore time.Time) int {
	return c.sessions.sweep(idleBefore)
}

func (c *Conversation) dispatch(ctx context.Context, userID int64, state *entity.ConversationState, action entity.Action) []entity.OutboundMessage {
	switch action.Kind {
	case entity.ActionStart, entity.ActionHome:
		return c.home(ctx, state, "")

	case entity.ActionRefresh:
		state.InvalidateRates()
		return c.home(ctx, state, "Курсы обновлены.")

	case entity.ActionConvertMenu:
		state.ResetPair()
		state.Step = entity.StepChoosingBase
		return []entity.OutboundMessage{baseMenu(c.set, "")}

	case entity.ActionChooseDate:
		state.ResetPair()
		state.Step = entity.StepAwaitingDate
		return []entity.OutboundMessage{datePrompt("")}

	case entity.ActionLatestDate:
		return c.applyDate(ctx, state, nil)

	case entity.ActionHistory:
		return c.history(userID, state)

	case entity.ActionRepeat:
		return c.repeat(state)

	case entity.ActionPickBase:
		return c.pickBase(state, action.Currency)

	case entity.ActionPickTarget:
		return c.pickTarget(ctx, state, action.Currency)

	case entity.ActionText:
		handler, ok := c.onText[state.CurrentStep()]
		if !ok {
			return []entity.OutboundMessage{helpMessage()}
		}
		return handler(ctx, userID, state, action.Text)

	case entity.ActionNoop:
		return nil
	}

	c.log.Warn("unknown action", slog.Int64("user_id", userID), slog.Int("kind", int(action.Kind)))
	return []entity.OutboundMessage{helpMessage()}
}

func (c *Conversation) home(ctx context.Context, state *entity.ConversationState, info string) []entity.OutboundMessage {
	state.ResetPair()
	state.Step = entity.StepIdle

	table := c.ensureRates(ctx, state)
	return []entity.OutboundMessage{mainMenu(table, c.now(), info)}
}

func (c *Conversation) pickBase(state *entity.ConversationState, base entity.Currency) []entity.OutboundMessage {
	if !c.set.Contains(base) {
		c.log.Warn("base currency is not supported", slog.String("currency", string(base)))
		return []entity.OutboundMessage{currencyUnavailable()}
	}

	state.Base = base
	state.Target = ""
	state.Step = entity.StepChoosingTarget

	return []entity.OutboundMessage{targetMenu(c.set, base, "")}
}

func (c *Conversation) pickTarget(ctx context.Context, state *entity.ConversationState, target entity.Currency) []entity.OutboundMessage {
	if state.Base == "" {
		state.Step = entity.StepChoosingBase
		return []entity.OutboundMessage{baseMenu(c.set, "Сначала выберите базовую валюту.")}
	}

	if !c.set.Contains(target) {
		c.log.Warn("target currency is not supported", slog.String("currency", string(target)))
		return []entity.OutboundMessage{currencyUnavailable()}
	}

	if target == state.Base {
		state.Target = ""
		state.Step = entity.StepChoosingTarget
		return []entity.OutboundMessage{targetMenu(c.set, state.Base, "Выберите валюту, отличную от базовой.")}
	}

	state.Target = target

	table := c.ensureRates(ctx, state)
	if _, err := Convert(1, state.Base, state.Target, table); err != nil {
		c.log.Info("pair is not quotable",
			slog.String("base", string(state.Base)),
			slog.String("target", string(state.Target)),
			slog.String("error", err.Error()))
		state.ResetPair()
		state.Step = entity.StepIdle
		return []entity.OutboundMessage{ratesUnavailable()}
	}

	state.Step = entity.StepAwaitingAmount
	return []entity.OutboundMessage{amountPrompt(state.Base, state.Target, "")}
}

func (c *Conversation) repeat(state *entity.ConversationState) []entity.OutboundMessage {
	if !state.HasPair() {
		state.ResetPair()
		state.Step = entity.StepChoosingBase
		return []entity.OutboundMessage{baseMenu(c.set, "")}
	}

	state.Step = entity.StepAwaitingAmount
	return []entity.OutboundMessage{amountPrompt(state.Base, state.Target, "")}
}

func (c *Conversation) enterAmount(ctx context.Context, userID int64, state *entity.ConversationState, text string) []entity.OutboundMessage {
	if !state.HasPair() {
		state.ResetPair()
		state.Step = entity.StepChoosingBase
		return []entity.OutboundMessage{baseMenu(c.set, "Не удалось определить валюты, выберите пару заново.")}
	}

	amount, err := parseAmount(text)
	if err != nil {
		metrics.ConversionsTotal.WithLabelValues("invalid_input").Inc()
		return []entity.OutboundMessage{amountPrompt(state.Base, state.Target,
			"Введите только число или используйте кнопки меню для других действий.")}
	}

	table := c.ensureRates(ctx, state)
	result, err := Convert(amount, state.Base, state.Target, table)
	if err != nil {
		c.log.Info("conversion failed",
			slog.Int64("user_id", userID),
			slog.String("base", string(state.Base)),
			slog.String("target", string(state.Target)),
			slog.String("error", err.Error()))
		switch {
		case errors.Is(err, entity.ErrInvalidAmount):
			metrics.ConversionsTotal.WithLabelValues("invalid_input").Inc()
			return []entity.OutboundMessage{amountPrompt(state.Base, state.Target,
				"Слишком большая сумма, введите число поменьше.")}
		case errors.Is(err, entity.ErrUnsupportedCurrency):
			metrics.ConversionsTotal.WithLabelValues("unsupported").Inc()
			return []entity.OutboundMessage{currencyUnavailable()}
		}
		metrics.ConversionsTotal.WithLabelValues("unavailable").Inc()
		return []entity.OutboundMessage{ratesUnavailable()}
	}
	metrics.ConversionsTotal.WithLabelValues("ok").Inc()

	c.journal(entity.Conversion{
		UserID:   userID,
		Time:     c.now(),
		RateDate: rateDate(table, c.now()),
		Base:     state.Base,
		Target:   state.Target,
		Amount:   amount,
		Result:   result,
	})

	state.Step = entity.StepIdle
	return []entity.OutboundMessage{resultMessage(amount, state.Base, result, state.Target, table, c.now())}
}

func (c *Conversation) enterDate(ctx context.Context, _ int64, state *entity.ConversationState, text string) []entity.OutboundMessage {
	date, err := parseDate(text)
	if err != nil {
		return []entity.OutboundMessage{datePrompt("Неверный формат даты. Используйте ДД.ММ.ГГГГ или нажмите '🏠 Меню'.")}
	}
	return c.applyDate(ctx, state, &date)
}

func (c *Conversation) applyDate(ctx context.Context, state *entity.ConversationState, date *time.Time) []entity.OutboundMessage {
	state.SetDate(date)
	state.InvalidateRates()
	return c.home(ctx, state, "Дата обновлена.")
}

func (c *Conversation) history(userID int64, state *entity.ConversationState) []entity.OutboundMessage {
	state.ResetPair()
	state.Step = entity.StepIdle

	if c.listConversions == nil {
		return []entity.OutboundMessage{historyMessage(nil, false)}
	}

	conversions, err := c.listConversions.Execute(userID)
	if err != nil {
		c.log.Error("failed to load history", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return []entity.OutboundMessage{historyMessage(nil, true)}
	}
	return []entity.OutboundMessage{historyMessage(conversions, false)}
}

func (c *Conversation) journal(conversion entity.Conversion) {
	if c.recordConversion == nil {
		return
	}
	if _, err := c.recordConversion.Execute(conversion); err != nil {
		c.log.Error("failed to journal conversion",
			slog.Int64("user_id", conversion.UserID),
			slog.String("error", err.Error()))
	}
}

// ensureRates returns the cached table of the session, fetching a new one
// when there is none for the selected date or the cached one is unusable.
func (c *Conversation) ensureRates(ctx context.Context, state *entity.ConversationState) entity.RateTable {
	if state.Rates != nil && state.Rates.Available() {
		return *state.Rates
	}

	table := c.fetchRates.Execute(ctx, state.Date)
	state.Rates = &table
	return table
}

func rateDate(table entity.RateTable, now time.Time) time.Time {
	if d := table.Date(); !d.IsZero() {
		return d
	}
	if requested := table.Requested(); requested != nil {
		return *requested
	}
	return now
}
