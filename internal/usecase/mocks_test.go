package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"cbrbot/internal/entity"
)

type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) Fetch(ctx context.Context, date *time.Time) (entity.RatePayload, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(entity.RatePayload), args.Error(1)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(c entity.Conversion) (entity.Conversion, error) {
	args := m.Called(c)
	return args.Get(0).(entity.Conversion), args.Error(1)
}

func (m *MockHistoryRepository) Last(userID int64, limit int) ([]entity.Conversion, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Conversion), args.Error(1)
}

type MockIdempotenceRepository struct {
	mock.Mock
}

func (m *MockIdempotenceRepository) MakeRecord(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotenceRepository) Purge(before time.Time) (int, error) {
	args := m.Called(before)
	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var cbrPayload = entity.RatePayload{
	Base: entity.RUB,
	Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	Quotes: []entity.Quote{
		{Code: entity.USD, Nominal: 1, Value: 90.5},
		{Code: entity.EUR, Nominal: 1, Value: 100.2},
		{Code: entity.CNY, Nominal: 10, Value: 125.3},
	},
}
