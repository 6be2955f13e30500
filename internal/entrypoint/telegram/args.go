package telegram

import (
	"strings"

	"cbrbot/internal/entity"
)

const (
	callbackHome        = "main_menu"
	callbackConvertMenu = "convert_menu"
	callbackChooseDate  = "change_date"
	callbackLatestDate  = "latest_date"
	callbackRefresh     = "refresh"
	callbackHistory     = "history"
	callbackRepeat      = "repeat"
	callbackEmpty       = "empty"

	callbackBasePrefix   = "base:"
	callbackTargetPrefix = "target:"
)

var callbackByKind = map[entity.ActionKind]string{
	entity.ActionStart:       callbackHome,
	entity.ActionHome:        callbackHome,
	entity.ActionConvertMenu: callbackConvertMenu,
	entity.ActionChooseDate:  callbackChooseDate,
	entity.ActionLatestDate:  callbackLatestDate,
	entity.ActionRefresh:     callbackRefresh,
	entity.ActionHistory:     callbackHistory,
	entity.ActionRepeat:      callbackRepeat,
	entity.ActionNoop:        callbackEmpty,
}

var kindByCallback = map[string]entity.ActionKind{
	callbackHome:        entity.ActionHome,
	callbackConvertMenu: entity.ActionConvertMenu,
	callbackChooseDate:  entity.ActionChooseDate,
	callbackLatestDate:  entity.ActionLatestDate,
	callbackRefresh:     entity.ActionRefresh,
	callbackHistory:     entity.ActionHistory,
	callbackRepeat:      entity.ActionRepeat,
	callbackEmpty:       entity.ActionNoop,
}

// Labels of the persistent reply keyboard.
const (
	menuLabel    = "🏠 Меню"
	convertLabel = "💱 Конвертация"
	dateLabel    = "📅 Выбрать дату"
)

var keywords = map[string]entity.ActionKind{
	"меню":           entity.ActionHome,
	"menu":           entity.ActionHome,
	"🏠 меню":         entity.ActionHome,
	"🏠":              entity.ActionHome,
	"главное меню":   entity.ActionHome,
	"конвертация":    entity.ActionConvertMenu,
	"конвертировать": entity.ActionConvertMenu,
	"💱 конвертация":  entity.ActionConvertMenu,
	"дата":           entity.ActionChooseDate,
	"выбрать дату":   entity.ActionChooseDate,
	"📅 выбрать дату": entity.ActionChooseDate,
	"история":        entity.ActionHistory,
}

var commands = map[string]entity.ActionKind{
	"start":   entity.ActionStart,
	"menu":    entity.ActionHome,
	"convert": entity.ActionConvertMenu,
	"date":    entity.ActionChooseDate,
	"history": entity.ActionHistory,
}

func encodeAction(action entity.Action) string {
	switch action.Kind {
	case entity.ActionPickBase:
		return callbackBasePrefix + string(action.Currency)
	case entity.ActionPickTarget:
		return callbackTargetPrefix + string(action.Currency)
	}
	if data, ok := callbackByKind[action.Kind]; ok {
		return data
	}
	return callbackEmpty
}

// decodeAction maps callback data of an inline button back to an action.
// Unknown data is treated as a no-op press.
func decodeAction(data string) entity.Action {
	if code, ok := strings.CutPrefix(data, callbackBasePrefix); ok {
		return entity.PickBase(entity.Currency(strings.ToUpper(code)))
	}
	if code, ok := strings.CutPrefix(data, callbackTargetPrefix); ok {
		return entity.PickTarget(entity.Currency(strings.ToUpper(code)))
	}
	if kind, ok := kindByCallback[data]; ok {
		return entity.Action{Kind: kind}
	}
	return entity.Action{Kind: entity.ActionNoop}
}

// textAction recognises commands and reply-keyboard captions; anything else
// is free text for the current step.
func textAction(text string, command string) entity.Action {
	if command != "" {
		if kind, ok := commands[command]; ok {
			return entity.Action{Kind: kind}
		}
	}

	trimmed := strings.TrimSpace(text)
	if kind, ok := keywords[strings.ToLower(trimmed)]; ok {
		return entity.Action{Kind: kind}
	}
	return entity.TextAction(trimmed)
}
