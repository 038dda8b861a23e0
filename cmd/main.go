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

	"github.com/setpoint-app/setpoint/config"
	"github.com/setpoint-app/setpoint/db"
	"github.com/setpoint-app/setpoint/handlers"
	"github.com/setpoint-app/setpoint/middleware"
	"github.com/setpoint-app/setpoint/repositories"
	"github.com/setpoint-app/setpoint/routes"
	"github.com/setpoint-app/setpoint/scoring"
	"github.com/setpoint-app/setpoint/services"
	"github.com/setpoint-app/setpoint/storage"
)

// Периодичность фоновых задач: продвижение статусов турниров по датам
// и чистка протухших приглашений.
const schedulerInterval = 30 * time.Second

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

	// Загрузчик файлов (Cloudflare R2)
	if !cfg.R2Configured() {
		logger.Error("Cloudflare R2 storage is not configured")
		os.Exit(1)
	}
	uploader, err := storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2Config{
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

	// WebSocket-хаб живого счёта
	wsHub := scoring.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	orgRepo := repositories.NewPostgresOrganizationRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	statRepo := repositories.NewPostgresStatRepository(dbConn)

	// Сервисы
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	orgService := services.NewOrganizationService(dbConn, orgRepo, uploader)
	inviteService := services.NewInviteService(dbConn, inviteRepo, orgRepo)
	teamService := services.NewTeamService(teamRepo, rosterRepo, orgRepo, uploader)
	tournamentService := services.NewTournamentService(tournamentRepo, matchRepo, orgRepo, logger)
	matchService := services.NewMatchService(matchRepo, teamRepo, orgRepo)
	scoringService := services.NewScoringService(matchRepo, teamRepo, orgRepo, wsHub, logger)
	statService := services.NewStatService(statRepo, matchRepo, orgRepo)
	dashboardService := services.NewDashboardService(orgRepo, teamRepo, tournamentRepo, matchRepo)
	logger.Info("services initialized")

	// Фоновый планировщик
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("background scheduler started", slog.Duration("interval", schedulerInterval))

		runOnce := func() {
			if err := tournamentService.AutoAdvanceStatuses(context.Background()); err != nil {
				logger.Error("scheduler: tournament status advance failed", slog.Any("error", err))
			}
			if n, err := inviteService.PurgeExpired(context.Background()); err != nil {
				logger.Error("scheduler: invite purge failed", slog.Any("error", err))
			} else if n > 0 {
				logger.Info("scheduler: expired invites purged", slog.Int64("count", n))
			}
		}

		runOnce()
		for range ticker.C {
			runOnce()
		}
	}()

	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		User:         handlers.NewUserHandler(userService),
		Organization: handlers.NewOrganizationHandler(orgService),
		Invite:       handlers.NewInviteHandler(inviteService),
		Team:         handlers.NewTeamHandler(teamService),
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Match:        handlers.NewMatchHandler(matchService),
		Scoring:      handlers.NewScoringHandler(scoringService),
		Stat:         handlers.NewStatHandler(statService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, logger),
	}

	router := chi.NewRouter()
	routes.SetupRoutes(router, h,
		middleware.NewAuthenticator(cfg.JWTSecretKey),
		middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)
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
		logger.Info("server stopped gracefully")
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
	logger.Info("application exited")
}
