package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/badminton-community/config"
	"github.com/Dosada05/badminton-community/db"
	"github.com/Dosada05/badminton-community/handlers"
	"github.com/Dosada05/badminton-community/hub"
	"github.com/Dosada05/badminton-community/middleware"
	"github.com/Dosada05/badminton-community/repositories"
	"github.com/Dosada05/badminton-community/routes"
	"github.com/Dosada05/badminton-community/services"
	"github.com/Dosada05/badminton-community/storage"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(ctx, dbConn); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage is not configured, avatar uploads are disabled")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := hub.NewHub(logger)
	go wsHub.Run(hubCtx)
	logger.Info("WebSocket hub started")

	txManager := repositories.NewPostgresTxManager(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)
	invitationRepo := repositories.NewPostgresInvitationRepository(dbConn)
	resultRepo := repositories.NewPostgresMatchResultRepository(dbConn)
	pointsRepo := repositories.NewPostgresPointsRepository(dbConn)
	ratingRepo := repositories.NewPostgresRatingRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	maintenanceRepo := repositories.NewPostgresMaintenanceRepository(dbConn)

	notificationService := services.NewNotificationService(notificationRepo, wsHub, logger)
	pointsService := services.NewPointsService(pointsRepo, txManager, services.DefaultPointRules)
	ratingService := services.NewRatingService(ratingRepo, txManager)
	sessionService := services.NewSessionService(
		sessionRepo,
		participantRepo,
		scheduleRepo,
		invitationRepo,
		txManager,
		notificationService,
		pointsService,
		uploader,
		logger,
	)
	invitationService := services.NewInvitationService(
		invitationRepo,
		sessionRepo,
		participantRepo,
		txManager,
		notificationService,
		uploader,
		logger,
	)
	resultService := services.NewMatchResultService(
		resultRepo,
		txManager,
		pointsService,
		ratingService,
		notificationService,
		logger,
	)
	userService := services.NewUserService(userRepo, uploader, logger)
	adminService := services.NewAdminUserService(userRepo, uploader)
	dashboardService := services.NewDashboardService(userRepo, sessionRepo, resultRepo)

	maintenance, err := services.NewMaintenanceScheduler(maintenanceRepo, notificationService, cfg.MaintenanceInterval, logger)
	if err != nil {
		return err
	}
	maintenance.Start()
	defer func() {
		if err := maintenance.Shutdown(); err != nil {
			logger.Error("failed to stop maintenance scheduler", slog.Any("error", err))
		}
	}()
	logger.Info("maintenance scheduler started", slog.Duration("interval", cfg.MaintenanceInterval))

	router := chi.NewRouter()
	routes.SetupRoutes(router, middleware.NewAuthenticator(cfg.JWTSecretKey, userRepo, logger), cfg.AllowedOrigins, routes.Handlers{
		Session:      handlers.NewSessionHandler(sessionService),
		Participant:  handlers.NewParticipantHandler(sessionService),
		Invite:       handlers.NewInviteHandler(invitationService),
		Match:        handlers.NewMatchHandler(resultService),
		Points:       handlers.NewPointsHandler(pointsService),
		Notification: handlers.NewNotificationHandler(notificationService),
		User:         handlers.NewUserHandler(userService),
		Admin:        handlers.NewAdminUserHandler(adminService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, cfg.AllowedOrigins),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	stopHub()
	logger.Info("server shutdown complete")
	return nil
}
