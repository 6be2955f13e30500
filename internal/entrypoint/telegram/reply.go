package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cbrbot/internal/entity"
)

type reply struct {
	text           string
	inlineKeyboard *tgbotapi.InlineKeyboardMarkup
	menu           bool
}

func replyFromMessage(msg entity.OutboundMessage) reply {
	return reply{
		text:           msg.Text,
		inlineKeyboard: inlineKeyboardFromButtons(msg.Buttons),
		menu:           msg.Menu,
	}
}

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabel),
			tgbotapi.NewKeyboardButton(convertLabel),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(dateLabel),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// newMessage builds a fresh chat message for r.
func (r reply) newMessage(chatID int64) tgbotapi.MessageConfig {
	message := tgbotapi.NewMessage(chatID, r.text)
	switch {
	case r.menu:
		message.ReplyMarkup = menuKeyboard()
	case r.inlineKeyboard != nil:
		message.ReplyMarkup = *r.inlineKeyboard
	}
	return message
}

// editMessage rewrites an existing message in place. Reply keyboards cannot
// be attached to an edit, so menu replies are never sent this way.
func (r reply) editMessage(chatID int64, messageID int) tgbotapi.EditMessageTextConfig {
	message := tgbotapi.NewEditMessageText(chatID, messageID, r.text)
	message.ReplyMarkup = r.inlineKeyboard
	return message
}
