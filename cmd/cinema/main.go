package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/config"
	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/cache"
	"github.com/qs-lzh/cinema-booking/internal/handler"
	"github.com/qs-lzh/cinema-booking/internal/mq"
	"github.com/qs-lzh/cinema-booking/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogEnv)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	redisCache, mqConn, err := openBackends(ctx, cfg, s)
	if err != nil {
		return err
	}

	application := app.New(cfg, s, redisCache, mqConn, logger)
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close app", zap.Error(err))
		}
	}()
	if err := application.Init(ctx); err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	if cfg.LogEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.NewRouter(application),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Cinema app is running", zap.String("url", "http://"+cfg.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openBackends connects the optional redis cache and rabbitmq. On failure
// everything opened so far, the store included, is closed.
func openBackends(ctx context.Context, cfg *config.Config, s store.Store) (*cache.RedisCache, *amqp.Connection, error) {
	var closers []func() error
	fail := func(err error) (*cache.RedisCache, *amqp.Connection, error) {
		errs := []error{err}
		for _, c := range closers {
			errs = append(errs, c())
		}
		return nil, nil, errors.Join(append(errs, s.Close())...)
	}

	var redisCache *cache.RedisCache
	if cfg.CacheURL != "" {
		var err error
		redisCache, err = cache.NewRedisCache(cfg.CacheURL)
		if err != nil {
			return fail(fmt.Errorf("create redis cache: %w", err))
		}
		closers = append(closers, redisCache.Close)
		if err := redisCache.Ping(ctx); err != nil {
			return fail(fmt.Errorf("ping redis: %w", err))
		}
	}

	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		var err error
		mqConn, err = mq.NewMQConn(cfg.MQURL)
		if err != nil {
			return fail(fmt.Errorf("connect rabbitmq: %w", err))
		}
	}

	return redisCache, mqConn, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return store.NewGormStore(ctx, db)
	default:
		s, err := store.NewJSONStore(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("open data file: %w", err)
		}
		return s, nil
	}
}
