package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"telecare/internal/infrastructure/events"
	"telecare/internal/infrastructure/monitoring"
	redisrepo "telecare/internal/infrastructure/repositories/redis"
	signalsrv "telecare/internal/infrastructure/signal"
	"telecare/pkg/config"
	"telecare/pkg/logger"
	"telecare/pkg/utils"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/telecare/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	metrics := monitoring.NewPrometheusCollector()

	// Room lifecycle events are optional; the relay works standalone without
	// Redis, which is the default deployment.
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			log,
		)
		if err != nil {
			log.Warnw("events disabled, failed to connect to Redis", "error", err)
		} else {
			bus := events.NewEventBus(client, utils.GenerateInstanceID(), cfg.Events.Channel, log)
			defer bus.Close()
			defer redisrepo.CloseRedisClient(client)
			publisher = bus
		}
	}

	server := signalsrv.NewServer(cfg, log, metrics, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Fatalw("signaling server failed", "error", err)
	}
	log.Info("signaling server stopped")
}
