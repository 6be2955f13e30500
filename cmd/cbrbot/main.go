package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"

	"cbrbot/internal/config"
	"cbrbot/internal/entrypoint/httpserver"
	"cbrbot/internal/entrypoint/telegram"
	"cbrbot/internal/logger"
	"cbrbot/internal/usecase"
	"cbrbot/internal/usecase/provider/cbr"
	"cbrbot/internal/usecase/repository/history"
	"cbrbot/internal/usecase/repository/idempotence"
)

const housekeepingInterval = time.Minute

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	logs, err := logger.NewLoggerWithFile(cfg.App.LogFile, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	defer logs.Close()

	if err := run(cfg, logs.Logger); err != nil {
		logs.Logger.Error("bot stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	set, err := cfg.CurrencySet()
	if err != nil {
		return err
	}

	db, err := bolt.Open(cfg.Storage.DBPath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Storage.DBPath, err)
	}
	defer db.Close()

	idempotenceRepository, err := idempotence.NewBoltDB(db)
	if err != nil {
		return err
	}
	idempotenceUsecase := usecase.NewIdempotence(idempotenceRepository)
	purgeIdempotenceUsecase := usecase.NewPurgeIdempotence(idempotenceRepository, cfg.Storage.IdempotenceTTL)

	historyRepository, err := history.NewBoltDB(db)
	if err != nil {
		return err
	}
	recordConversionUsecase := usecase.NewRecordConversion(historyRepository)
	listConversionsUsecase := usecase.NewListConversions(historyRepository, cfg.Storage.HistoryLimit)

	provider := cbr.NewClient(cfg.CBR.URL, cfg.CBR.Timeout, log.With(slog.String("component", "cbr")))
	fetchRatesUsecase := usecase.NewFetchRates(provider, set, log)

	conversation := usecase.NewConversation(set, fetchRatesUsecase, recordConversionUsecase, listConversionsUsecase, log)

	bot, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.Workers, idempotenceUsecase, conversation,
		log.With(slog.String("component", "telegram")))
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("cbrbot starting",
		slog.Any("currencies", set.Codes()),
		slog.String("pivot", string(set.Pivot())),
		slog.Int("workers", cfg.Telegram.Workers))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(ctx)
	})

	if cfg.App.MetricsAddr != "" {
		metricsServer := httpserver.New(cfg.App.MetricsAddr, log.With(slog.String("component", "http")))
		g.Go(func() error {
			return metricsServer.Run(ctx)
		})
	}

	g.Go(func() error {
		housekeeping(ctx, conversation, purgeIdempotenceUsecase, cfg.App.SessionTTL, log)
		return nil
	})

	err = g.Wait()
	log.Info("cbrbot stopped")
	return err
}

// housekeeping forgets idle sessions and old update ids until ctx is done.
func housekeeping(ctx context.Context, conversation *usecase.Conversation, purge *usecase.PurgeIdempotence, sessionTTL time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := conversation.Sweep(now.Add(-sessionTTL)); n > 0 {
				log.Debug("idle sessions dropped", slog.Int("count", n))
			}

			n, err := purge.Execute(now)
			if err != nil {
				log.Error("failed to purge idempotence records", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				log.Debug("idempotence records purged", slog.Int("count", n))
			}
		}
	}
}
