package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cbrbot/internal/entity"
)

func TestFetchRatesSuccess(t *testing.T) {
	provider := new(MockRateProvider)
	provider.On("Fetch", mock.Anything, (*time.Time)(nil)).Return(cbrPayload, nil).Once()

	table := NewFetchRates(provider, testCurrencySet(t), discardLogger()).Execute(context.Background(), nil)

	require.True(t, table.Available())
	usd, ok := table.Rate(entity.USD)
	assert.True(t, ok)
	assert.Equal(t, 90.5, usd)
	cny, _ := table.Rate(entity.CNY)
	assert.InDelta(t, 12.53, cny, 1e-12)
	provider.AssertExpectations(t)
}

func TestFetchRatesRetriesOnce(t *testing.T) {
	provider := new(MockRateProvider)
	provider.On("Fetch", mock.Anything, mock.Anything).Return(entity.RatePayload{}, errors.New("connection reset")).Once()
	provider.On("Fetch", mock.Anything, mock.Anything).Return(cbrPayload, nil).Once()

	table := NewFetchRates(provider, testCurrencySet(t), discardLogger()).Execute(context.Background(), nil)

	assert.True(t, table.Available())
	provider.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestFetchRatesGivesUpAfterSecondFailure(t *testing.T) {
	provider := new(MockRateProvider)
	provider.On("Fetch", mock.Anything, mock.Anything).Return(entity.RatePayload{}, errors.New("timeout"))

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	table := NewFetchRates(provider, testCurrencySet(t), discardLogger()).Execute(context.Background(), &date)

	provider.AssertNumberOfCalls(t, "Fetch", 2)
	assert.False(t, table.Available())
	assert.True(t, errors.Is(table.Failure(), entity.ErrProviderTransport))
	assert.Equal(t, date, *table.Requested())

	for _, c := range []entity.Currency{entity.USD, entity.EUR, entity.CNY} {
		_, ok := table.Rate(c)
		assert.False(t, ok, c)
	}
	rub, ok := table.Rate(entity.RUB)
	assert.True(t, ok)
	assert.Equal(t, 1.0, rub)
}

func TestFetchRatesDoesNotRetryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := new(MockRateProvider)
	provider.On("Fetch", mock.Anything, mock.Anything).Return(entity.RatePayload{}, context.Canceled)

	table := NewFetchRates(provider, testCurrencySet(t), discardLogger()).Execute(ctx, nil)

	provider.AssertNumberOfCalls(t, "Fetch", 1)
	assert.True(t, errors.Is(table.Failure(), entity.ErrProviderTransport))
}
