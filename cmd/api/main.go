package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telecare/internal/core/services"
	httphandlers "telecare/internal/handlers/http"
	"telecare/internal/infrastructure/middleware"
	"telecare/internal/infrastructure/monitoring"
	"telecare/internal/infrastructure/repositories"
	"telecare/pkg/config"
	"telecare/pkg/distributed"
	"telecare/pkg/logger"
	"telecare/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

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

	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "telecare-api",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Warnw("tracing disabled, init failed", "error", err)
	} else {
		defer tracerProvider.Shutdown(context.Background())
	}

	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	userRepo := repoFactory.CreateUserRepository()
	doctorRepo := repoFactory.CreateDoctorRepository()
	appointmentRepo := repoFactory.CreateAppointmentRepository()

	// Booking slots are reserved under a distributed lock when Redis is
	// available; a single memory-backed instance does not need one.
	var lockManager *distributed.Manager
	if client, ok := repoFactory.RedisClient(); ok {
		lockManager = distributed.NewManager(client, "telecare:lock:")
	}

	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, log)
	doctorService := services.NewDoctorService(doctorRepo, log)
	defer doctorService.Close()
	appointmentService := services.NewAppointmentService(appointmentRepo, userRepo, doctorRepo, lockManager, log)

	authHandler := httphandlers.NewAuthHandler(authService)
	doctorHandler := httphandlers.NewDoctorHandler(doctorService)
	appointmentHandler := httphandlers.NewAppointmentHandler(appointmentService, authService)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestLoggerMiddleware(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	authHandler.SetupRoutes(router)
	doctorHandler.SetupRoutes(router)
	appointmentHandler.SetupRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("storage", repoFactory.HealthCheck, 2*time.Second)

	router.GET("/ready", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infow("booking API listening", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("booking API failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("shutdown error", "error", err)
	}
	log.Info("booking API stopped")
}
