package usecase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cbrbot/internal/entity"
)

var (
	homeButton       = entity.Button{Label: "🏠 Главное меню", Action: entity.Action{Kind: entity.ActionHome}}
	convertButton    = entity.Button{Label: "💱 Конвертация", Action: entity.Action{Kind: entity.ActionConvertMenu}}
	newPairButton    = entity.Button{Label: "🔁 Выбрать другую пару", Action: entity.Action{Kind: entity.ActionConvertMenu}}
	changeBaseButton = entity.Button{Label: "🔁 Сменить базовую валюту", Action: entity.Action{Kind: entity.ActionConvertMenu}}
	chooseDateButton = entity.Button{Label: "📅 Выбрать дату", Action: entity.Action{Kind: entity.ActionChooseDate}}
	latestDateButton = entity.Button{Label: "📆 Сегодня", Action: entity.Action{Kind: entity.ActionLatestDate}}
	refreshButton    = entity.Button{Label: "🔄 Обновить", Action: entity.Action{Kind: entity.ActionRefresh}}
	historyButton    = entity.Button{Label: "📜 История", Action: entity.Action{Kind: entity.ActionHistory}}
	repeatButton     = entity.Button{Label: "🔂 Другая сумма", Action: entity.Action{Kind: entity.ActionRepeat}}
	newConvertButton = entity.Button{Label: "🔁 Новая конвертация", Action: entity.Action{Kind: entity.ActionConvertMenu}}
)

const currencyRowLength = 2

func mainMenu(table entity.RateTable, now time.Time, info string) entity.OutboundMessage {
	var lines []string
	if info != "" {
		lines = append(lines, info, "")
	}
	if !table.Available() {
		lines = append(lines, "⚠️ Не удалось получить курсы ЦБ РФ. Попробуйте обновить или выберите другую дату.", "")
	}

	lines = append(lines, fmt.Sprintf("Курсы ЦБ РФ на %s:", tableDate(table, now)))
	for _, c := range table.Currencies().Foreign() {
		formatted := "н/д"
		if rate, ok := table.Rate(c); ok {
			formatted = formatRate(rate)
		}
		lines = append(lines, fmt.Sprintf("1 %s = %s %s", c, formatted, table.Pivot()))
	}

	return entity.OutboundMessage{
		Text: strings.Join(lines, "\n"),
		Buttons: [][]entity.Button{
			{convertButton},
			{chooseDateButton},
			{refreshButton, historyButton},
		},
	}
}

func baseMenu(set entity.CurrencySet, notice string) entity.OutboundMessage {
	text := "Выберите валюту, из которой будем конвертировать:"
	if notice != "" {
		text = notice + "\n\n" + text
	}

	var rows [][]entity.Button
	var row []entity.Button
	for _, c := range set.Codes() {
		row = append(row, entity.Button{Label: c.Label(), Action: entity.PickBase(c)})
		if len(row) == currencyRowLength {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []entity.Button{homeButton})

	return entity.OutboundMessage{Text: text, Buttons: rows}
}

// targetMenu lists every supported currency except base.
func targetMenu(set entity.CurrencySet, base entity.Currency, notice string) entity.OutboundMessage {
	text := fmt.Sprintf("Вы выбрали %s. Теперь выберите валюту назначения:", base.Label())
	if notice != "" {
		text = notice + "\n\n" + text
	}

	var rows [][]entity.Button
	for _, c := range set.Codes() {
		if c == base {
			continue
		}
		rows = append(rows, []entity.Button{{
			Label:  fmt.Sprintf("%s → %s", base.Label(), c.Label()),
			Action: entity.PickTarget(c),
		}})
	}
	rows = append(rows, []entity.Button{changeBaseButton}, []entity.Button{homeButton})

	return entity.OutboundMessage{Text: text, Buttons: rows}
}

func amountPrompt(base, target entity.Currency, notice string) entity.OutboundMessage {
	text := fmt.Sprintf("Введите сумму в %s,\nчтобы получить результат в %s", base.Label(), target.Label())
	if notice != "" {
		text = notice + "\n\n" + text
	}
	return entity.OutboundMessage{
		Text:    text,
		Buttons: [][]entity.Button{{newPairButton}, {homeButton}},
	}
}

func resultMessage(amount float64, base entity.Currency, result float64, target entity.Currency, table entity.RateTable, now time.Time) entity.OutboundMessage {
	return entity.OutboundMessage{
		Text: fmt.Sprintf("%s %s = %s %s\nКурсы ЦБ РФ на %s",
			formatAmount(amount), base, formatAmount(result), target, tableDate(table, now)),
		Buttons: [][]entity.Button{{repeatButton}, {newConvertButton}, {homeButton}},
	}
}

func datePrompt(notice string) entity.OutboundMessage {
	text := "Введите дату в формате ДД.ММ.ГГГГ."
	if notice != "" {
		text = notice + "\n" + text
	}
	return entity.OutboundMessage{
		Text:    text,
		Buttons: [][]entity.Button{{latestDateButton}, {homeButton}},
	}
}

func ratesUnavailable() entity.OutboundMessage {
	return entity.OutboundMessage{
		Text:    "Курс для выбранной пары сейчас недоступен. Попробуйте другую дату или валюту.",
		Buttons: [][]entity.Button{{chooseDateButton}, {convertButton}, {homeButton}},
	}
}

func currencyUnavailable() entity.OutboundMessage {
	return entity.OutboundMessage{
		Text:    "Эта валюта сейчас недоступна.",
		Buttons: [][]entity.Button{{convertButton}, {homeButton}},
	}
}

func helpMessage() entity.OutboundMessage {
	return entity.OutboundMessage{
		Text:    "Не понял запрос. Используйте кнопки меню или введите число для конвертации.",
		Buttons: [][]entity.Button{{convertButton}, {homeButton}},
	}
}

func onboardingMessage() entity.OutboundMessage {
	return entity.OutboundMessage{
		Text: "Быстрые действия доступны на клавиатуре ниже.",
		Menu: true,
	}
}

func historyMessage(conversions []entity.Conversion, failed bool) entity.OutboundMessage {
	buttons := [][]entity.Button{{convertButton}, {homeButton}}

	switch {
	case failed:
		return entity.OutboundMessage{Text: "История временно недоступна.", Buttons: buttons}
	case len(conversions) == 0:
		return entity.OutboundMessage{Text: "История конвертаций пуста.", Buttons: buttons}
	}

	lines := []string{"Последние конвертации:", ""}
	for i, c := range conversions {
		lines = append(lines, fmt.Sprintf("%d. %s: %s %s = %s %s (курс на %s)",
			i+1, c.Time.Format("02.01.2006 15:04"),
			formatAmount(c.Amount), c.Base, formatAmount(c.Result), c.Target,
			c.RateDate.Format(dateLayout)))
	}

	return entity.OutboundMessage{Text: strings.Join(lines, "\n"), Buttons: buttons}
}

func tableDate(table entity.RateTable, now time.Time) string {
	if d := table.Date(); !d.IsZero() {
		return d.Format(dateLayout)
	}
	if requested := table.Requested(); requested != nil {
		return requested.Format(dateLayout)
	}
	return now.Format(dateLayout)
}

func formatRate(rate float64) string {
	if !finite(rate) {
		return "н/д"
	}
	return decimal.NewFromFloat(rate).StringFixed(4)
}

// formatAmount renders two decimals with a space between thousands.
func formatAmount(value float64) string {
	if !finite(value) {
		return "н/д"
	}
	fixed := decimal.NewFromFloat(value).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(digit)
	}

	return sign + b.String() + "." + fracPart
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
