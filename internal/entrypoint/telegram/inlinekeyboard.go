package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cbrbot/internal/entity"
)

// Telegram rejects inline rows wider than eight buttons.
const maxButtonsPerRow = 8

type inlineKeyboard struct {
	rows             [][]tgbotapi.InlineKeyboardButton
	maxButtonsPerRow int
}

func newInlineKeyboard(maxButtonsPerRow int) *inlineKeyboard {
	return &inlineKeyboard{
		rows:             make([][]tgbotapi.InlineKeyboardButton, 0),
		maxButtonsPerRow: maxButtonsPerRow,
	}
}

func (k *inlineKeyboard) addButton(text, data string) {
	if len(k.rows) == 0 || len(k.rows[len(k.rows)-1]) == k.maxButtonsPerRow {
		k.addRow()
	}

	lastRowIndex := len(k.rows) - 1
	k.rows[lastRowIndex] = append(k.rows[lastRowIndex], tgbotapi.NewInlineKeyboardButtonData(text, data))
}

func (k *inlineKeyboard) addRow() {
	k.rows = append(k.rows, []tgbotapi.InlineKeyboardButton{})
}

func (k *inlineKeyboard) markup() *tgbotapi.InlineKeyboardMarkup {
	if len(k.rows) == 0 {
		return nil
	}
	return &tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: k.rows,
	}
}

func inlineKeyboardFromButtons(rows [][]entity.Button) *tgbotapi.InlineKeyboardMarkup {
	keyboard := newInlineKeyboard(maxButtonsPerRow)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		keyboard.addRow()
		for _, button := range row {
			keyboard.addButton(button.Label, encodeAction(button.Action))
		}
	}
	return keyboard.markup()
}
