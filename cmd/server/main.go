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

	"alcyxob/gym-tracker/internal/api"
	"alcyxob/gym-tracker/internal/config"
	"alcyxob/gym-tracker/internal/platform/logger"
	"alcyxob/gym-tracker/internal/repository"
	"alcyxob/gym-tracker/internal/repository/memory"
	"alcyxob/gym-tracker/internal/repository/mongo"
	"alcyxob/gym-tracker/internal/repository/postgres"
	"alcyxob/gym-tracker/internal/service"
	"alcyxob/gym-tracker/internal/storage"
)

// @title Gym Tracker API
// @version 1.0
// @description API for tracking gym sessions, browsing the exercise catalog and building workout plans.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		slog.String("driver", cfg.Database.Driver),
		slog.String("address", cfg.Server.Address))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	repos, err := openRepositories(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if repos.Close != nil {
			log.Info("closing database connections")
			repos.Close()
		}
	}()

	// --- Initialize Storage ---
	var media storage.FileStorage
	if cfg.S3.Enabled() {
		media, err = storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
	} else {
		log.Warn("S3 bucket not configured, exercise media disabled")
	}

	// --- Initialize Services ---
	services := api.Services{
		Auth:      service.NewAuthService(repos.Accounts, cfg.JWT.Secret, cfg.JWT.Expiration, log),
		Exercises: service.NewExerciseService(repos.Exercises, media, cfg.S3.PresignExpiry, log),
		GymLogs:   service.NewGymLogService(repos.GymLogs),
		Plans:     service.NewPlanService(repos.Plans, repos.Exercises, log),
	}

	// --- Setup Routes ---
	router, err := api.NewRouter(log, services)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exiting")
	return nil
}

// openRepositories connects the configured backend. Postgres migrations run here when enabled.
func openRepositories(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (repository.Repositories, error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.URL)
		if err != nil {
			return repository.Repositories{}, err
		}
		if cfg.Migrate {
			if err := postgres.Migrate(pool, log); err != nil {
				pool.Close()
				return repository.Repositories{}, err
			}
		}
		log.Info("connected to postgres")
		return postgres.New(pool, log), nil

	case "mongo":
		client, err := mongo.ConnectDB(ctx, cfg.URL)
		if err != nil {
			return repository.Repositories{}, fmt.Errorf("could not connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Name)

		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(indexCtx, db, log); err != nil {
			_ = mongo.DisconnectDB(client)
			return repository.Repositories{}, err
		}

		repos := mongo.New(db)
		repos.Close = func() {
			if err := mongo.DisconnectDB(client); err != nil {
				log.Error("failed to disconnect MongoDB", slog.Any("error", err))
			}
		}
		log.Info("connected to mongo", slog.String("database", cfg.Name))
		return repos, nil

	case "memory":
		log.Warn("using in-memory storage, data is lost on exit")
		return memory.NewStore().Repositories(), nil
	}
	return repository.Repositories{}, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
