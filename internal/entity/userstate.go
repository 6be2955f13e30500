package entity

import "time"

type Step string

const (
	StepIdle Step = "idle"

	StepChoosingBase   Step = "choosingBase"
	StepChoosingTarget Step = "choosingTarget"

	StepAwaitingAmount Step = "awaitingAmount"
	StepAwaitingDate   Step = "awaitingDate"
)

// ConversationState is the progress of one user through the bot.
// The zero value is a fresh session in StepIdle.
type ConversationState struct {
	Step Step

	Base   Currency
	Target Currency

	// Date is the day the user asked rates for, nil meaning latest.
	Date *time.Time

	// Rates is the last fetched table for Date.
	Rates *RateTable

	Onboarded bool
}

func (s *ConversationState) CurrentStep() Step {
	if s.Step == "" {
		return StepIdle
	}
	return s.Step
}

func (s *ConversationState) ResetPair() {
	s.Base = ""
	s.Target = ""
}

func (s *ConversationState) HasPair() bool {
	return s.Base != "" && s.Target != ""
}

// SetDate stores the requested date and drops the cached table if the day changed.
func (s *ConversationState) SetDate(date *time.Time) {
	if sameDay(s.Date, date) {
		return
	}
	s.Date = copyTime(date)
	s.InvalidateRates()
}

func (s *ConversationState) InvalidateRates() {
	s.Rates = nil
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
