package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tam_website/internal/cache"
	"tam_website/internal/config"
	"tam_website/internal/handler"
	"tam_website/internal/repository"
	"tam_website/internal/scheduler"
	"tam_website/internal/service"
	"tam_website/internal/storage"
	"tam_website/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found, relying on environment variables")
	}
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg.DB, logger)
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(ctx, dbPool); err != nil {
		fatal(logger, "failed to auto-migrate database", err)
	}

	rdb, err := config.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		fatal(logger, "failed to connect to redis", err)
	}
	defer rdb.Close()

	store, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		fatal(logger, "failed to initialise object storage", err)
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWT.SecretKey, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	queue := scheduler.NewQueue(rdb, "")

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	otpRepo := repository.NewOtpRepository(dbPool)
	articleRepo := repository.NewArticleRepository(dbPool)
	teamRepo := repository.NewTeamRepository(dbPool)
	playerRepo := repository.NewPlayerRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	statsRepo := repository.NewStatsRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(service.AuthDeps{
		Users:             userRepo,
		OTPs:              otpRepo,
		Registrations:     cache.NewRegistrationStore(rdb, cfg.OTP.RegistrationTTL),
		ResetTickets:      cache.NewResetTickets(rdb, cfg.OTP.RegistrationTTL),
		Limiter:           cache.NewSendLimiter(rdb, cfg.OTP.SendLimit, cfg.OTP.SendWindow),
		Sender:            service.LogSender{Logger: logger},
		JWT:               jwtUtil,
		OTPTTL:            cfg.OTP.TTL,
		InitialAdminPhone: cfg.InitialAdminPhone,
		Logger:            logger,
	})
	userService := service.NewUserService(userRepo)
	articleService := service.NewArticleService(articleRepo, teamRepo, queue,
		cache.NewViewDedup(rdb, cfg.ViewDedupTTL), store, logger)
	teamService := service.NewTeamService(teamRepo, store, logger)
	playerService := service.NewPlayerService(playerRepo, store, logger)
	categoryService := service.NewCategoryService(categoryRepo, store, logger)
	dashboardService := service.NewDashboardService(statsRepo)

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	publishCounter := scheduler.NewPublishCounter()
	registry.MustRegister(publishCounter)

	// --- Scheduled publishing ---
	restored, err := articleService.RestoreSchedules(ctx)
	if err != nil {
		logger.Error("failed to restore scheduled publications", slog.String("error", err.Error()))
	} else {
		logger.Info("scheduled publications restored", slog.Int("count", restored))
	}

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	worker := scheduler.NewWorker(queue, articleService, logger.With(slog.String("component", "publisher")),
		cfg.PublishPollInterval, publishCounter)
	go func() {
		defer close(workerDone)
		worker.Run(workerCtx)
	}()

	// --- Initialize Handlers ---
	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService, logger),
		AdminUsers:   handler.NewAdminUserHandler(userService, logger),
		Blog:         handler.NewBlogHandler(articleService, teamService, categoryService, logger),
		AdminArticle: handler.NewAdminArticleHandler(articleService, teamService, logger),
		AdminContent: handler.NewAdminContentHandler(teamService, playerService, categoryService, logger),
		Dashboard:    handler.NewDashboardHandler(dashboardService, logger),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"db":    dbPool.Ping,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, logger),
	}

	// --- Setup Gin Router ---
	router, err := handler.NewRouter(handlers, handler.RouterConfig{
		JWT:             jwtUtil,
		Users:           userRepo,
		Logger:          logger,
		Registry:        registry,
		MaxUploadMemory: 32 << 20,
	})
	if err != nil {
		fatal(logger, "failed to build router", err)
	}

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "listen failed", err)
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	logger.Info("shutting down server")

	cancelWorker()
	<-workerDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	logger.Info("server exiting")
}
