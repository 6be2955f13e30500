package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"cbrbot/internal/entity"
	"cbrbot/internal/metrics"
)

// FetchRates builds a RateTable for one date. Transport failures are
// retried once right away; after that the table is returned unavailable
// with the failure recorded instead of an error.
type FetchRates struct {
	provider rateProvider
	set      entity.CurrencySet
	retries  uint64
	log      *slog.Logger
}

func NewFetchRates(provider rateProvider, set entity.CurrencySet, log *slog.Logger) *FetchRates {
	return &FetchRates{
		provider: provider,
		set:      set,
		retries:  1,
		log:      log,
	}
}

func (f *FetchRates) Execute(ctx context.Context, date *time.Time) entity.RateTable {
	const op = "usecase.FetchRates"

	var (
		payload  entity.RatePayload
		attempts int
	)

	operation := func() error {
		attempts++
		p, err := f.provider.Fetch(ctx, date)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			f.log.Warn("rate fetch failed",
				slog.String("op", op),
				slog.Int("attempt", attempts),
				slog.String("date", dateLabel(date)),
				slog.String("error", err.Error()))
			return err
		}
		payload = p
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, f.retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		metrics.RateFetchesTotal.WithLabelValues("failed").Inc()
		if !errors.Is(err, entity.ErrProviderTransport) {
			err = fmt.Errorf("%w: %w", entity.ErrProviderTransport, err)
		}
		f.log.Error("rates unavailable",
			slog.String("op", op),
			slog.String("date", dateLabel(date)),
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()))
		return entity.UnavailableRateTable(f.set, date, fmt.Errorf("%s: %w", op, err))
	}

	if attempts > 1 {
		metrics.RateFetchesTotal.WithLabelValues("retried").Inc()
	} else {
		metrics.RateFetchesTotal.WithLabelValues("ok").Inc()
	}

	table := entity.NewRateTable(f.set, date, payload)
	f.log.Debug("rates fetched",
		slog.String("date", dateLabel(date)),
		slog.Int("quotes", len(payload.Quotes)),
		slog.Int("attempts", attempts))

	return table
}

func dateLabel(date *time.Time) string {
	if date == nil {
		return "latest"
	}
	return date.Format(dateLayout)
}
