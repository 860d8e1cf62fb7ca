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

	_ "github.com/lib/pq"

	"github.com/hokuto-abe/quiz-grandprix/config"
	"github.com/hokuto-abe/quiz-grandprix/db"
	"github.com/hokuto-abe/quiz-grandprix/handlers"
	"github.com/hokuto-abe/quiz-grandprix/live"
	"github.com/hokuto-abe/quiz-grandprix/repositories"
	"github.com/hokuto-abe/quiz-grandprix/routes"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
	"github.com/hokuto-abe/quiz-grandprix/services"
	"github.com/hokuto-abe/quiz-grandprix/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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
		uploader = storage.NewDisabledUploader()
		logger.Warn("object storage not configured, round archiving disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	matchingRepo := repositories.NewPostgresMatchingRepository(dbConn)
	scoreOpRepo := repositories.NewPostgresScoreOperationRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	resultRepo := repositories.NewPostgresYontakuResultRepository(dbConn)
	preferenceRepo := repositories.NewPostgresCoursePreferenceRepository(dbConn)
	settingRepo := repositories.NewPostgresSettingRepository(dbConn)
	ledgerStore := repositories.NewLedgerStore(dbConn, matchRepo, matchingRepo, scoreOpRepo, scoreRepo)
	logger.Info("repositories initialized")

	ledger := scoring.NewLedger(ledgerStore, hubNotifier{hub: wsHub}, logger)

	authService := services.NewAuthService(services.AdminCredentials{
		Login:        cfg.AdminLogin,
		PasswordHash: cfg.AdminPasswordHash,
	}, cfg.JWTSecretKey)
	scoreService := services.NewScoreService(ledger, logger)
	matchmakingService := services.NewMatchmakingService(
		dbConn,
		roundRepo,
		matchRepo,
		matchingRepo,
		scoreOpRepo,
		scoreRepo,
		resultRepo,
		playerRepo,
		preferenceRepo,
		ledgerStore,
		wsHub,
		logger,
	)
	playerService := services.NewPlayerService(
		dbConn,
		playerRepo,
		resultRepo,
		preferenceRepo,
		settingRepo,
		matchRepo,
		roundRepo,
		logger,
	)
	dashboardService := services.NewDashboardService(roundRepo, matchRepo, matchingRepo, playerRepo, ledgerStore)
	archiveService := services.NewArchiveService(dashboardService, uploader, logger)

	router := routes.InitRoutes(routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Score:       handlers.NewScoreHandler(scoreService),
		Matchmaking: handlers.NewMatchmakingHandler(matchmakingService),
		Round:       handlers.NewRoundHandler(dashboardService, archiveService),
		Player:      handlers.NewPlayerHandler(playerService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, logger),
	}, authService)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// hubNotifier adapts the websocket hub to the ledger's notifier.
type hubNotifier struct {
	hub *live.Hub
}

func (n hubNotifier) ScoreUpdated(matchID int, snap scoring.Snapshot) {
	n.hub.BroadcastToMatch(matchID, live.EventScoreUpdated, snap)
}
