package entity

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrRateUnavailable     = errors.New("rate unavailable")
	ErrProviderTransport   = errors.New("rate provider transport failure")

	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidAmount = fmt.Errorf("%w: amount must be a finite number", ErrInvalidInput)
	ErrInvalidDate   = fmt.Errorf("%w: date must be formatted as DD.MM.YYYY", ErrInvalidInput)

	// ErrAmountOutOfRange reports a conversion whose result does not fit a float64.
	ErrAmountOutOfRange = fmt.Errorf("%w: amount out of range", ErrInvalidAmount)
)
