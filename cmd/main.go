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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/courtside/club-system/config"
	"github.com/courtside/club-system/db"
	"github.com/courtside/club-system/handlers"
	"github.com/courtside/club-system/repositories"
	api "github.com/courtside/club-system/routes"
	"github.com/courtside/club-system/schedule"
	"github.com/courtside/club-system/services"
	"github.com/courtside/club-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Object storage is optional; without it poster and avatar URLs are
	// simply absent.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("object storage not configured, uploads disabled")
	}

	var notifier services.EmailSender
	if cfg.SMTPConfigured() {
		notifier = services.NewEmailService(cfg)
		logger.Info("SMTP notifications enabled", slog.String("host", cfg.SMTPHost))
	}

	wsHub := schedule.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	ratingRepo := repositories.NewPostgresPlayerRatingRepository(dbConn)
	ladderRepo := repositories.NewPostgresLadderRepository(dbConn)
	memberRepo := repositories.NewPostgresLadderMemberRepository(dbConn)
	ladderMatchRepo := repositories.NewPostgresLadderMatchRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	participantRepo := repositories.NewPostgresGroupParticipantRepository(dbConn)
	groupMatchRepo := repositories.NewPostgresGroupMatchRepository(dbConn)
	winnerRepo := repositories.NewPostgresWinnerRepository(dbConn)

	txRunner := services.NewTxRunner(dbConn)

	playerService := services.NewPlayerService(playerRepo, ratingRepo, uploader)
	ladderService := services.NewLadderService(ladderRepo, memberRepo, playerRepo, ratingRepo, cfg.InitialRating)
	ladderMatchService := services.NewLadderMatchService(
		txRunner, ladderRepo, memberRepo, ladderMatchRepo, ratingRepo, cfg.InitialRating)
	groupService := services.NewGroupService(
		txRunner, tournamentRepo, groupRepo, participantRepo, groupMatchRepo, ratingRepo, wsHub, cfg.InitialRating)
	tournamentService := services.NewTournamentService(
		txRunner, tournamentRepo, groupRepo, participantRepo, groupMatchRepo,
		ratingRepo, winnerRepo, uploader, notifier, logger, cfg.InitialRating)
	logger.Info("services initialized")

	playerHandler := handlers.NewPlayerHandler(playerService)
	ladderHandler := handlers.NewLadderHandler(ladderService, ladderMatchService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	groupHandler := handlers.NewGroupHandler(groupService)
	websocketHandler := handlers.NewWebsocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Config{
		JWTSecretKey:       cfg.JWTSecretKey,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, playerHandler, ladderHandler, tournamentHandler, groupHandler, websocketHandler)
	logger.Info("routes configured")

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
