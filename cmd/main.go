package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"polyp-dashboard/config"
	"polyp-dashboard/internal/api/rest"
	"polyp-dashboard/internal/api/telegram"
	app "polyp-dashboard/internal/application"
	"polyp-dashboard/internal/container"
	"polyp-dashboard/internal/infrastructure/scheduler"
	"polyp-dashboard/internal/infrastructure/storage"
	"polyp-dashboard/internal/infrastructure/synthetic"
	"polyp-dashboard/internal/infrastructure/vision"
	"polyp-dashboard/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", nil)
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.LogLevel, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()

	if err != nil {
		log.Error().Err(err).Msg("stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("stopped")
}

// run поднимает сервисы и блокируется до отмены ctx или ошибки HTTP-сервера.
// Всё запущенное останавливается до возврата.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Собираем инфраструктуру
	decoder := vision.NewDecoder(uint8(cfg.Threshold))
	generator := synthetic.NewGenerator(cfg.Seed)
	uploads := storage.NewFSUploadStore(cfg.UploadDir, "/uploads")

	appContainer := container.New(
		app.DatasetConfig{Threshold: cfg.Threshold, PageSize: cfg.PageSize},
		container.Ports{
			Users:       storage.NewMemoryUserRepository(),
			Dataset:     storage.NewMemoryDatasetRepository(),
			Source:      storage.NewFSDatasetSource(cfg.DataDir),
			Uploads:     uploads,
			Decoder:     decoder,
			Overlay:     decoder,
			Diagnoses:   generator,
			MetricsMock: generator,
		},
		logger.Component(log, "dataset"),
	)

	// Датасет может быть пуст при первом запуске, сервер всё равно поднимаем
	if n, err := appContainer.DatasetService.Reload(ctx); err != nil {
		log.Warn().Err(err).Str("dir", cfg.DataDir).Msg("initial dataset load failed")
	} else {
		log.Info().Int("records", n).Str("dir", cfg.DataDir).Msg("dataset loaded")
	}

	if cfg.RescanSchedule != "" {
		rescanner, err := scheduler.NewRescanner(cfg.RescanSchedule, appContainer.DatasetService,
			cfg.RescanTimeout, logger.Component(log, "scheduler"))
		if err != nil {
			return fmt.Errorf("create rescanner: %w", err)
		}
		rescanner.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer stopCancel()
			if err := rescanner.Stop(stopCtx); err != nil {
				log.Warn().Err(err).Msg("rescan did not finish in time")
			}
		}()
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.UserService, appContainer.AnalysisService,
			cfg.Threshold, logger.Component(log, "telegram"))
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Msg("bot is running")
			if err := bot.Run(ctx); err != nil {
				log.Error().Err(err).Msg("bot stopped")
			}
		}()
	} else {
		log.Info().Msg("TELEGRAM_TOKEN is not set, bot is disabled")
	}

	httpLog := logger.Component(log, "http")
	router := rest.NewRouter(rest.RouterConfig{
		UploadDir:      uploads.Dir(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, rest.NewHandlers(appContainer.DatasetService, appContainer.AnalysisService, cfg.Threshold, httpLog), httpLog)

	server := rest.NewServer(cfg.HTTPAddr, router, cfg.ShutdownTimeout, httpLog)
	return server.Run(ctx)
}
