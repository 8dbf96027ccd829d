package workflow

import (
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/mq"
)

// NotificationWorkflow consumes booking events and records a confirmation
// for each of them.
type NotificationWorkflow struct {
	logger *zap.Logger
}

func NewNotificationWorkflow(logger *zap.Logger) *NotificationWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorkflow{
		logger: logger,
	}
}

func (w *NotificationWorkflow) Start(mqConn *amqp.Connection) error {
	for _, queue := range mq.Queues {
		if err := w.consume(mqConn, queue); err != nil {
			return err
		}
	}
	return nil
}

func (w *NotificationWorkflow) consume(conn *amqp.Connection, queueName string) error {
	ch, err := mq.NewChannel(conn)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.handleMessage(queueName, msg); err != nil {
				w.logger.Error("Failed to handle booking event", zap.String("queue", queueName), zap.Error(err))
			}
		}
	}()

	return nil
}

func (w *NotificationWorkflow) handleMessage(queueName string, msg amqp.Delivery) error {
	switch queueName {
	case mq.BookingCreatedQueue:
		var message mq.BookingCreatedMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			msg.Nack(false, false)
			return err
		}
		w.logger.Info("Booking confirmed",
			zap.Int("booking_id", message.BookingID),
			zap.Int("session_id", message.SessionID),
			zap.Int("user_id", message.UserID),
			zap.String("customer_name", message.CustomerName),
			zap.Ints("seats", message.Seats),
		)
	case mq.BookingCancelledQueue:
		var message mq.BookingCancelledMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			msg.Nack(false, false)
			return err
		}
		w.logger.Info("Booking cancelled",
			zap.Int("booking_id", message.BookingID),
			zap.Int("session_id", message.SessionID),
			zap.Int("user_id", message.UserID),
			zap.Ints("seats", message.Seats),
		)
	default:
		msg.Nack(false, false)
		return fmt.Errorf("unknown queue %s", queueName)
	}

	msg.Ack(false)
	return nil
}
