package entity

import (
	"math"
	"time"
)

// Quote is one currency as reported by a rate provider: Nominal units of
// the currency cost Value units of the provider's base currency.
type Quote struct {
	Code    Currency
	Nominal float64
	Value   float64
}

// RatePayload is the raw provider answer for one date.
type RatePayload struct {
	Base   Currency
	Date   time.Time
	Quotes []Quote
}

// RateTable maps every supported currency to the number of pivot units per
// one unit of that currency. Missing, zero and malformed quotes are absent.
// The pivot is always exactly 1.
type RateTable struct {
	set       CurrencySet
	rates     map[Currency]float64
	date      time.Time
	requested *time.Time
	failure   error
}

// NewRateTable normalizes payload against the currency set. Quotes are
// divided by their nominal and, when the provider base is not the pivot,
// rebased through the pivot's own quote.
func NewRateTable(set CurrencySet, requested *time.Time, payload RatePayload) RateTable {
	base := payload.Base
	if base == "" {
		base = set.Pivot()
	}

	perUnit := map[Currency]float64{base: 1}
	for _, q := range payload.Quotes {
		if q.Code == base {
			continue
		}
		if !validPositive(q.Nominal) || !validPositive(q.Value) {
			continue
		}
		rate := q.Value / q.Nominal
		if !validPositive(rate) {
			continue
		}
		perUnit[q.Code] = rate
	}

	table := RateTable{
		set:       set,
		rates:     map[Currency]float64{set.Pivot(): 1},
		date:      payload.Date,
		requested: copyTime(requested),
	}

	pivotInBase, ok := perUnit[set.Pivot()]
	if !ok {
		table.failure = ErrRateUnavailable
		return table
	}

	for _, c := range set.Codes() {
		if c == set.Pivot() {
			continue
		}
		rate, ok := perUnit[c]
		if !ok {
			continue
		}
		if rebased := rate / pivotInBase; validPositive(rebased) {
			table.rates[c] = rebased
		}
	}

	return table
}

// UnavailableRateTable is the table used when the provider could not be
// reached: only the pivot is quotable and reason explains why.
func UnavailableRateTable(set CurrencySet, requested *time.Time, reason error) RateTable {
	return RateTable{
		set:       set,
		rates:     map[Currency]float64{set.Pivot(): 1},
		requested: copyTime(requested),
		failure:   reason,
	}
}

func (t RateTable) Pivot() Currency {
	return t.set.Pivot()
}

func (t RateTable) Currencies() CurrencySet {
	return t.set
}

func (t RateTable) Supports(c Currency) bool {
	return t.set.Contains(c)
}

// Rate returns the pivot units per one unit of c. ok is false when the
// rate is absent.
func (t RateTable) Rate(c Currency) (rate float64, ok bool) {
	if c == t.set.Pivot() && c != "" {
		return 1, true
	}
	rate, ok = t.rates[c]
	return rate, ok
}

// Date is the date the provider reported its quotes for. Zero when unknown.
func (t RateTable) Date() time.Time {
	return t.date
}

// Requested is the date the table was fetched for, nil meaning latest.
func (t RateTable) Requested() *time.Time {
	return copyTime(t.requested)
}

// Failure is the reason the provider data could not be used, if any.
func (t RateTable) Failure() error {
	return t.failure
}

func (t RateTable) Available() bool {
	return t.failure == nil
}

func validPositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
