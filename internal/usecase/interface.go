package usecase

import (
	"context"
	"time"

	"cbrbot/internal/entity"
)

type rateProvider interface {
	// Fetch returns quotes for date, or the latest published ones when date is nil.
	Fetch(ctx context.Context, date *time.Time) (entity.RatePayload, error)
}

type idempotenceRepository interface {
	// MakeRecord return true if it was first time to call this method with same id
	MakeRecord(string) (bool, error)
	Purge(before time.Time) (int, error)
}

type historyRepository interface {
	Append(entity.Conversion) (entity.Conversion, error)
	Last(userID int64, limit int) ([]entity.Conversion, error)
}
