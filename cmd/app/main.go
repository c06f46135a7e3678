package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard-api/internal/auth"
	"github.com/BuzzLyutic/taskboard-api/internal/config"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
	"github.com/BuzzLyutic/taskboard-api/internal/server"
	"github.com/BuzzLyutic/taskboard-api/internal/service"
)

const connectTimeout = 10 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open the task store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	if cfg.AuthSecret == "change-me" {
		logger.Warn("AUTH_SECRET is not set, tokens are signed with the default secret")
	}

	r := server.NewRouter(server.Deps{
		Tasks:          service.NewTaskService(store),
		Auth:           auth.NewService(cfg.AuthSecret, cfg.TokenTTL),
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		MaxInFlight:    cfg.MaxInFlight,
	})

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
		return
	}
	logger.Info("Server stopped successfully")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore connects the configured backend and returns it with its release func.
func openStore(cfg config.Config, logger *zap.Logger) (repo.TaskRepository, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		release := func() {
			dctx, dcancel := context.WithTimeout(context.Background(), connectTimeout)
			defer dcancel()
			if err := client.Disconnect(dctx); err != nil {
				logger.Warn("mongo disconnect", zap.Error(err))
			}
		}

		store := repo.NewMongoTaskRepo(client.Database(cfg.MongoDatabase))
		if err := store.Ping(ctx); err != nil {
			release()
			return nil, nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			release()
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("Successfully connected to MongoDB", zap.String("database", cfg.MongoDatabase))
		return store, release, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		logger.Info("Successfully connected to the Database!")
		return repo.NewTaskRepo(pool), pool.Close, nil

	default:
		logger.Warn("Using the in-memory store, tasks are lost on restart")
		return repo.NewMemoryTaskRepo(), func() {}, nil
	}
}
