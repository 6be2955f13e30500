package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"cbrbot/internal/entity"
)

const envFile = ".env"

type Config struct {
	Telegram TelegramConfig
	CBR      CBRConfig
	Storage  StorageConfig
	App      AppConfig
}

type TelegramConfig struct {
	Token   string `envconfig:"BOT_TOKEN" required:"true"`
	Workers int    `envconfig:"WORKERS" default:"4"`
}

type CBRConfig struct {
	URL           string        `envconfig:"CBR_URL" default:"https://www.cbr.ru/scripts/XML_daily.asp"`
	Timeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	Currencies    []string      `envconfig:"CURRENCIES" default:"RUB,USD,EUR,CNY"`
	PivotCurrency string        `envconfig:"PIVOT_CURRENCY" default:"RUB"`
}

type StorageConfig struct {
	DBPath         string        `envconfig:"DB_PATH" default:"cbrbot.db"`
	HistoryLimit   int           `envconfig:"HISTORY_LIMIT" default:"10"`
	IdempotenceTTL time.Duration `envconfig:"IDEMPOTENCE_TTL" default:"48h"`
}

type AppConfig struct {
	LogFile     string        `envconfig:"LOG_FILE" default:"bot.log"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	SessionTTL  time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	MetricsAddr string        `envconfig:"METRICS_ADDR" default:":9090"`
}

// New reads .env when present and then the process environment, which wins.
func New() (*Config, error) {
	const op = "config.New"

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: load %s: %w", op, envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("BOT_TOKEN must not be empty")
	}
	if c.Telegram.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Telegram.Workers)
	}
	if c.Storage.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.Storage.HistoryLimit)
	}
	if c.App.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.App.SessionTTL)
	}
	_, err := c.CurrencySet()
	return err
}

// CurrencySet builds the supported currencies from CURRENCIES and PIVOT_CURRENCY.
func (c *Config) CurrencySet() (entity.CurrencySet, error) {
	codes := make([]entity.Currency, 0, len(c.CBR.Currencies))
	for _, code := range c.CBR.Currencies {
		codes = append(codes, entity.Currency(code))
	}
	pivot := entity.Currency(strings.ToUpper(strings.TrimSpace(c.CBR.PivotCurrency)))
	return entity.NewCurrencySet(pivot, codes)
}
