package entity

import (
	"fmt"
	"strings"
)

type Currency string

const (
	RUB Currency = "RUB"
	USD Currency = "USD"
	EUR Currency = "EUR"
	CNY Currency = "CNY"
)

var currencyLabels = map[Currency]string{
	RUB: "🇷🇺 RUB",
	USD: "🇺🇸 USD",
	EUR: "🇪🇺 EUR",
	CNY: "🇨🇳 CNY",
	"GBP": "🇬🇧 GBP",
	"JPY": "🇯🇵 JPY",
	"CHF": "🇨🇭 CHF",
	"KZT": "🇰🇿 KZT",
	"TRY": "🇹🇷 TRY",
	"BYN": "🇧🇾 BYN",
}

// Label is the button caption of the currency.
func (c Currency) Label() string {
	if label, ok := currencyLabels[c]; ok {
		return label
	}
	return string(c)
}

// CurrencySet is the fixed, ordered list of supported currencies together
// with the pivot every RateTable is expressed in.
type CurrencySet struct {
	codes []Currency
	pivot Currency
}

func NewCurrencySet(pivot Currency, codes []Currency) (CurrencySet, error) {
	if pivot == "" {
		return CurrencySet{}, fmt.Errorf("%w: empty pivot currency", ErrUnsupportedCurrency)
	}

	seen := make(map[Currency]bool, len(codes))
	ordered := make([]Currency, 0, len(codes))
	for _, c := range codes {
		c = Currency(strings.ToUpper(strings.TrimSpace(string(c))))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		ordered = append(ordered, c)
	}

	if !seen[pivot] {
		return CurrencySet{}, fmt.Errorf("%w: pivot %s is not in the currency list", ErrUnsupportedCurrency, pivot)
	}

	return CurrencySet{codes: ordered, pivot: pivot}, nil
}

func (s CurrencySet) Pivot() Currency {
	return s.pivot
}

// Codes returns a copy of the supported currencies in configured order.
func (s CurrencySet) Codes() []Currency {
	return append([]Currency(nil), s.codes...)
}

// Foreign returns every supported currency except the pivot.
func (s CurrencySet) Foreign() []Currency {
	foreign := make([]Currency, 0, len(s.codes))
	for _, c := range s.codes {
		if c != s.pivot {
			foreign = append(foreign, c)
		}
	}
	return foreign
}

func (s CurrencySet) Contains(c Currency) bool {
	for _, code := range s.codes {
		if code == c {
			return true
		}
	}
	return false
}
