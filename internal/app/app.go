package app

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/config"
	"github.com/qs-lzh/cinema-booking/internal/cache"
	"github.com/qs-lzh/cinema-booking/internal/mq"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
	"github.com/qs-lzh/cinema-booking/internal/service/workflow"
	"github.com/qs-lzh/cinema-booking/internal/store"
)

type App struct {
	Config *config.Config

	Store  store.Store
	Cache  *cache.RedisCache
	Logger *zap.Logger
	MQConn *amqp.Connection

	CredentialService domain.CredentialService
	TokenService      domain.TokenService
	BookingService    domain.BookingService
	MovieService      domain.MovieService
	ShowtimeService   domain.ShowtimeService

	BookingWorkflow      *workflow.BookingWorkflow
	NotificationWorkflow *workflow.NotificationWorkflow
}

// New wires the application. redisCache and mqConn are optional.
func New(config *config.Config, s store.Store, redisCache *cache.RedisCache, mqConn *amqp.Connection, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	var tokenCache domain.TokenCache
	if redisCache != nil {
		tokenCache = redisCache
	}
	var publisher workflow.EventPublisher
	if mqConn != nil {
		publisher = mq.NewPublisher(mqConn)
	}

	credentialService := domain.NewCredentialService(s)
	tokenService := domain.NewTokenService(s, tokenCache, logger.Named("tokens"))
	bookingService := domain.NewBookingService(s)
	movieService := domain.NewMovieService(s)
	showtimeService := domain.NewShowtimeService(s)

	bookingWorkflow := workflow.NewBookingWorkflow(bookingService, publisher, logger.Named("booking"))
	notificationWorkflow := workflow.NewNotificationWorkflow(logger.Named("notification"))

	return &App{
		Config:               config,
		Store:                s,
		Cache:                redisCache,
		Logger:               logger,
		MQConn:               mqConn,
		CredentialService:    credentialService,
		TokenService:         tokenService,
		BookingService:       bookingService,
		MovieService:         movieService,
		ShowtimeService:      showtimeService,
		BookingWorkflow:      bookingWorkflow,
		NotificationWorkflow: notificationWorkflow,
	}
}

func (app *App) Init(ctx context.Context) error {
	if app.Config != nil && app.Config.SeedCatalog {
		seeded, err := app.SeedCatalog(ctx)
		if err != nil {
			return err
		}
		if seeded {
			app.Logger.Info("Seeded demo catalog")
		}
	}

	if app.MQConn != nil {
		// init rabbit mq
		if err := mq.InitQueues(app.MQConn); err != nil {
			return err
		}
		if err := app.NotificationWorkflow.Start(app.MQConn); err != nil {
			return err
		}
	}

	return nil
}

func (app *App) Close() error {
	var errs []error
	if app.MQConn != nil {
		errs = append(errs, app.MQConn.Close())
	}
	if app.Cache != nil {
		errs = append(errs, app.Cache.Close())
	}
	errs = append(errs, app.Store.Close())
	return errors.Join(errs...)
}
