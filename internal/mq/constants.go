package mq

import "time"

// Queue names and message definitions

// immediate queue from booking to notification
// deliver message to notify that seats of a showtime were booked
const (
	BookingCreatedQueue = "booking.notification.created.immediate"
)

type BookingCreatedMessage struct {
	BookingID    int       `json:"booking_id"`
	SessionID    int       `json:"session_id"`
	UserID       int       `json:"user_id"`
	CustomerName string    `json:"customer_name"`
	Seats        []int     `json:"seats"`
	CreatedAt    time.Time `json:"created_at"`
}

// immediate queue from booking to notification
// deliver message to notify that a booking was cancelled and its seats freed
const (
	BookingCancelledQueue = "booking.notification.cancelled.immediate"
)

type BookingCancelledMessage struct {
	BookingID   int       `json:"booking_id"`
	SessionID   int       `json:"session_id"`
	UserID      int       `json:"user_id"`
	Seats       []int     `json:"seats"`
	CancelledAt time.Time `json:"cancelled_at"`
}

var Queues = []string{
	BookingCreatedQueue,
	BookingCancelledQueue,
}
