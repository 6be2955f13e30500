package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cbrbot/internal/entity"
)

const dateLayout = "02.01.2006"

var amountCleaner = strings.NewReplacer(" ", "", "\u00a0", "", "_", "", ",", ".")

func parseAmount(text string) (float64, error) {
	cleaned := amountCleaner.Replace(strings.TrimSpace(text))

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %q", entity.ErrInvalidAmount, text)
	}

	return amount, nil
}

func parseDate(text string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", entity.ErrInvalidDate, text)
	}
	return date, nil
}
