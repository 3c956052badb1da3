package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	TelegramToken   string // пустой токен отключает бота
	DataDir         string
	UploadDir       string
	Threshold       int
	PageSize        int
	LogLevel        string
	RescanSchedule  string // пустое расписание отключает пересканирование
	RescanTimeout   time.Duration
	RateLimitRPS    float64 // 0 отключает ограничение
	RateLimitBurst  int
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
	Seed            int64
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:       getString("HTTP_ADDR", ":8080"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DataDir:        getString("DATA_DIR", "public"),
		LogLevel:       getString("LOG_LEVEL", "info"),
		RescanSchedule: os.Getenv("RESCAN_SCHEDULE"),
	}
	cfg.UploadDir = getString("UPLOAD_DIR", cfg.DataDir+"/uploads")

	var errs []error
	cfg.Threshold = getInt("MASK_THRESHOLD", 127, &errs)
	cfg.PageSize = getInt("PAGE_SIZE", 9, &errs)
	cfg.RateLimitRPS = getFloat("RATE_LIMIT_RPS", 20, &errs)
	cfg.RateLimitBurst = getInt("RATE_LIMIT_BURST", 40, &errs)
	cfg.MaxUploadBytes = int64(getInt("MAX_UPLOAD_BYTES", 10<<20, &errs))
	cfg.Seed = int64(getInt("MOCK_SEED", 0, &errs))
	cfg.RescanTimeout = getDuration("RESCAN_TIMEOUT", 5*time.Minute, &errs)
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет диапазоны значений
func (c *Config) Validate() error {
	switch {
	case c.HTTPAddr == "":
		return errors.New("HTTP_ADDR is required")
	case c.Threshold < 0 || c.Threshold > 255:
		return fmt.Errorf("MASK_THRESHOLD must be in [0, 255], got %d", c.Threshold)
	case c.PageSize <= 0:
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	case c.RateLimitRPS > 0 && c.RateLimitBurst <= 0:
		return fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func getFloat(key string, def float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
