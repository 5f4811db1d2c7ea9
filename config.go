package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	backendRembg     = "rembg"
	backendChromaKey = "chromakey"
)

// Config is read once at process start. Only BOT_TOKEN is required.
type Config struct {
	TelegramToken   string `env:"BOT_TOKEN"`
	OwnerTelegramID int64  `env:"OWNER_TELEGRAM_ID"`

	RemoverBackend  string  `env:"REMOVER_BACKEND" envDefault:"rembg"`
	RembgURL        string  `env:"REMBG_URL" envDefault:"http://localhost:7000"`
	RembgModel      string  `env:"REMBG_MODEL" envDefault:"u2netp"`
	ChromaTolerance float64 `env:"CHROMA_TOLERANCE" envDefault:"48"`

	MaxFileSize    int64         `env:"MAX_FILE_SIZE" envDefault:"10485760"`
	MaxDimension   int           `env:"MAX_DIMENSION" envDefault:"2048"`
	ProcessTimeout time.Duration `env:"PROCESS_TIMEOUT" envDefault:"60s"`
	Workers        int           `env:"WORKERS" envDefault:"2"`

	MessagePerHour  int           `env:"MESSAGES_PER_HOUR" envDefault:"20"`
	MessagePerDay   int           `env:"MESSAGES_PER_DAY" envDefault:"100"`
	TempBanDuration time.Duration `env:"TEMP_BAN_DURATION" envDefault:"10m"`

	DBPath          string        `env:"DB_PATH" envDefault:"bot.db"`
	RecordRetention time.Duration `env:"RECORD_RETENTION" envDefault:"720h"`

	HTTPAddr string `env:"HTTP_ADDR"`
	Port     string `env:"PORT"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// loadConfig reads .env when present, then the process environment.
func loadConfig() (Config, error) {
	// A missing .env is the normal case on hosting platforms.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.HTTPAddr == "" && cfg.Port != "" {
		cfg.HTTPAddr = ":" + cfg.Port
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.TelegramToken == "" {
		return fmt.Errorf("missing BOT_TOKEN environment variable")
	}

	switch cfg.RemoverBackend {
	case backendRembg:
		if cfg.RembgURL == "" {
			return fmt.Errorf("REMBG_URL is required for the %s backend", backendRembg)
		}
		u, err := url.Parse(cfg.RembgURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid REMBG_URL %q", cfg.RembgURL)
		}
	case backendChromaKey:
		if cfg.ChromaTolerance <= 0 || cfg.ChromaTolerance > 255 {
			return fmt.Errorf("CHROMA_TOLERANCE must be in (0, 255], got %v", cfg.ChromaTolerance)
		}
	default:
		return fmt.Errorf("unknown REMOVER_BACKEND %q", cfg.RemoverBackend)
	}

	if cfg.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	if cfg.MaxDimension <= 0 {
		return fmt.Errorf("MAX_DIMENSION must be positive")
	}
	if cfg.ProcessTimeout <= 0 {
		return fmt.Errorf("PROCESS_TIMEOUT must be positive")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive")
	}
	if cfg.MessagePerHour <= 0 || cfg.MessagePerDay <= 0 {
		return fmt.Errorf("MESSAGES_PER_HOUR and MESSAGES_PER_DAY must be positive")
	}
	if cfg.TempBanDuration < 0 {
		return fmt.Errorf("TEMP_BAN_DURATION must not be negative")
	}
	return nil
}
