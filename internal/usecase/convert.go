package usecase

import (
	"fmt"
	"math"

	"cbrbot/internal/entity"
)

// Convert turns amount of base into target using table. The amount always
// travels through the pivot, base to pivot and then pivot to target. The
// result is not rounded. A result that overflows float64 is reported as
// ErrAmountOutOfRange.
func Convert(amount float64, base, target entity.Currency, table entity.RateTable) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %v", entity.ErrInvalidAmount, amount)
	}
	if !table.Supports(base) {
		return 0, fmt.Errorf("%w: %s", entity.ErrUnsupportedCurrency, base)
	}
	if !table.Supports(target) {
		return 0, fmt.Errorf("%w: %s", entity.ErrUnsupportedCurrency, target)
	}

	if base == target {
		return amount, nil
	}

	baseRate, ok := table.Rate(base)
	if !ok || baseRate == 0 {
		return 0, fmt.Errorf("%w: %s", entity.ErrRateUnavailable, base)
	}
	targetRate, ok := table.Rate(target)
	if !ok || targetRate == 0 {
		return 0, fmt.Errorf("%w: %s", entity.ErrRateUnavailable, target)
	}

	inPivot := amount
	if base != table.Pivot() {
		inPivot = amount * baseRate
	}

	result := inPivot
	if target != table.Pivot() {
		result = inPivot / targetRate
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: %v %s in %s", entity.ErrAmountOutOfRange, amount, base, target)
	}
	return result, nil
}
