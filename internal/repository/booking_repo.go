package repository

import (
	"slices"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

type BookingRepo interface {
	Create(booking *model.Booking)
	GetByID(id int) (*model.Booking, bool)
	GetByUserID(userID int) []model.Booking
	GetByShowtimeID(sessionID int) []model.Booking
	BookedSeats(sessionID int) map[int]struct{}
	Delete(id int) bool
}

type bookingRepoDoc struct {
	doc *model.Document
}

var _ BookingRepo = (*bookingRepoDoc)(nil)

func NewBookingRepo(doc *model.Document) *bookingRepoDoc {
	return &bookingRepoDoc{
		doc: doc,
	}
}

func (r *bookingRepoDoc) Create(booking *model.Booking) {
	booking.ID = r.doc.NextID(model.CollectionBookings)
	stored := *booking
	stored.Seats = slices.Clone(booking.Seats)
	r.doc.Bookings = append(r.doc.Bookings, stored)
}

func (r *bookingRepoDoc) GetByID(id int) (*model.Booking, bool) {
	for i := range r.doc.Bookings {
		if r.doc.Bookings[i].ID == id {
			b := r.doc.Bookings[i]
			return &b, true
		}
	}
	return nil, false
}

func (r *bookingRepoDoc) GetByUserID(userID int) []model.Booking {
	bookings := []model.Booking{}
	for _, b := range r.doc.Bookings {
		if b.UserID == userID {
			bookings = append(bookings, b)
		}
	}
	return bookings
}

func (r *bookingRepoDoc) GetByShowtimeID(sessionID int) []model.Booking {
	bookings := []model.Booking{}
	for _, b := range r.doc.Bookings {
		if b.SessionID == sessionID {
			bookings = append(bookings, b)
		}
	}
	return bookings
}

// BookedSeats is the union of seats over all live bookings of a showtime.
func (r *bookingRepoDoc) BookedSeats(sessionID int) map[int]struct{} {
	seats := make(map[int]struct{})
	for _, b := range r.GetByShowtimeID(sessionID) {
		for _, s := range b.Seats {
			seats[s] = struct{}{}
		}
	}
	return seats
}

func (r *bookingRepoDoc) Delete(id int) bool {
	n := len(r.doc.Bookings)
	r.doc.Bookings = slices.DeleteFunc(r.doc.Bookings, func(b model.Booking) bool {
		return b.ID == id
	})
	return len(r.doc.Bookings) != n
}
