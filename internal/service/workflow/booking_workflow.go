package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/mq"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, queueName string, message any) error
}

// BookingWorkflow commits bookings and then announces them. An event that
// cannot be published is logged; the booking itself stays committed.
type BookingWorkflow struct {
	BookingService domain.BookingService
	Publisher      EventPublisher
	Logger         *zap.Logger
}

func NewBookingWorkflow(bookingService domain.BookingService, publisher EventPublisher, logger *zap.Logger) *BookingWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingWorkflow{
		BookingService: bookingService,
		Publisher:      publisher,
		Logger:         logger,
	}
}

func (w *BookingWorkflow) Reserve(ctx context.Context, userID, sessionID int, seats []int) (*model.EnrichedBooking, error) {
	booking, err := w.BookingService.Reserve(ctx, userID, sessionID, seats)
	if err != nil {
		return nil, err
	}

	w.publish(ctx, mq.BookingCreatedQueue, mq.BookingCreatedMessage{
		BookingID:    booking.ID,
		SessionID:    booking.SessionID,
		UserID:       booking.UserID,
		CustomerName: booking.CustomerName,
		Seats:        booking.Seats,
		CreatedAt:    booking.CreatedAt,
	})
	return booking, nil
}

func (w *BookingWorkflow) Cancel(ctx context.Context, userID, bookingID int) error {
	booking, err := w.BookingService.Cancel(ctx, userID, bookingID)
	if err != nil {
		return err
	}

	w.publish(ctx, mq.BookingCancelledQueue, mq.BookingCancelledMessage{
		BookingID:   booking.ID,
		SessionID:   booking.SessionID,
		UserID:      booking.UserID,
		Seats:       booking.Seats,
		CancelledAt: time.Now().UTC(),
	})
	return nil
}

func (w *BookingWorkflow) publish(ctx context.Context, queueName string, message any) {
	if w.Publisher == nil {
		return
	}
	if err := w.Publisher.Publish(ctx, queueName, message); err != nil {
		w.Logger.Error("Failed to publish booking event", zap.String("queue", queueName), zap.Error(err))
	}
}
