package domain

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/store"
)

// BookingService owns seat reservations. A seat of a showtime is either
// free or held by exactly one live booking; there is no pending state.
type BookingService interface {
	ListBookedSeats(ctx context.Context, sessionID int) ([]int, error)
	GetSeatMap(ctx context.Context, sessionID int) (model.SeatMap, error)
	Reserve(ctx context.Context, userID, sessionID int, seats []int) (*model.EnrichedBooking, error)
	Cancel(ctx context.Context, userID, bookingID int) (*model.Booking, error)
	ListForUser(ctx context.Context, userID int) ([]model.EnrichedBooking, error)
}

type bookingService struct {
	store store.Store
	now   func() time.Time
}

var _ BookingService = (*bookingService)(nil)

func NewBookingService(s store.Store) *bookingService {
	return &bookingService{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ListBookedSeats returns the booked seats of a showtime in ascending order.
func (s *bookingService) ListBookedSeats(ctx context.Context, sessionID int) ([]int, error) {
	var seats []int
	err := s.store.View(ctx, func(doc *model.Document) error {
		seats = sortedSeats(repository.NewBookingRepo(doc).BookedSeats(sessionID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seats, nil
}

func (s *bookingService) GetSeatMap(ctx context.Context, sessionID int) (model.SeatMap, error) {
	var seatMap model.SeatMap
	err := s.store.View(ctx, func(doc *model.Document) error {
		session, ok := repository.NewShowtimeRepo(doc).GetByID(sessionID)
		if !ok {
			return service.NotFound("session not found")
		}
		seatMap = model.SeatMap{
			SessionID:   session.ID,
			TotalSeats:  session.TotalSeats,
			BookedSeats: sortedSeats(repository.NewBookingRepo(doc).BookedSeats(sessionID)),
		}
		return nil
	})
	return seatMap, err
}

// Reserve books all requested seats or none of them. The conflict check and
// the insert run inside one Store.Update, which is serialized against every
// other Update, so two overlapping requests can never both succeed.
func (s *bookingService) Reserve(ctx context.Context, userID, sessionID int, seats []int) (*model.EnrichedBooking, error) {
	var enriched *model.EnrichedBooking
	err := s.store.Update(ctx, func(doc *model.Document) error {
		user, ok := repository.NewUserRepo(doc).GetByID(userID)
		if !ok {
			return service.Unauthorized("authorization required")
		}

		session, ok := repository.NewShowtimeRepo(doc).GetByID(sessionID)
		if !ok {
			return service.NotFound("session not found")
		}

		requested, err := normalizeSeats(seats, session.TotalSeats)
		if err != nil {
			return err
		}

		bookings := repository.NewBookingRepo(doc)
		booked := bookings.BookedSeats(sessionID)
		var busy []int
		for _, seat := range requested {
			if _, taken := booked[seat]; taken {
				busy = append(busy, seat)
			}
		}
		if len(busy) > 0 {
			return &service.SeatConflictError{Seats: busy}
		}

		booking := &model.Booking{
			SessionID:    sessionID,
			UserID:       user.ID,
			CustomerName: user.FullName,
			Seats:        requested,
			CreatedAt:    s.now(),
		}
		bookings.Create(booking)
		enriched = enrich(doc, *booking)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enriched, nil
}

// normalizeSeats validates the range and drops repeated seats, keeping
// the order of first appearance.
func normalizeSeats(seats []int, totalSeats int) ([]int, error) {
	if len(seats) == 0 {
		return nil, service.Validation("sessionId and seats are required")
	}
	unique := make([]int, 0, len(seats))
	seen := make(map[int]struct{}, len(seats))
	for _, seat := range seats {
		if seat < 1 || seat > totalSeats {
			return nil, service.Validation("invalid seat number %d: must be between 1 and %d", seat, totalSeats)
		}
		if _, dup := seen[seat]; dup {
			continue
		}
		seen[seat] = struct{}{}
		unique = append(unique, seat)
	}
	return unique, nil
}

// Cancel deletes a booking owned by userID and frees its seats.
func (s *bookingService) Cancel(ctx context.Context, userID, bookingID int) (*model.Booking, error) {
	var cancelled *model.Booking
	err := s.store.Update(ctx, func(doc *model.Document) error {
		bookings := repository.NewBookingRepo(doc)
		booking, ok := bookings.GetByID(bookingID)
		if !ok {
			return service.NotFound("booking not found")
		}
		if booking.UserID != userID {
			return service.Forbidden("cannot cancel another user's booking")
		}
		bookings.Delete(bookingID)
		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// ListForUser returns the user's bookings, newest first.
func (s *bookingService) ListForUser(ctx context.Context, userID int) ([]model.EnrichedBooking, error) {
	result := []model.EnrichedBooking{}
	err := s.store.View(ctx, func(doc *model.Document) error {
		for _, b := range repository.NewBookingRepo(doc).GetByUserID(userID) {
			result = append(result, *enrich(doc, b))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return result, nil
}

// enrich joins a booking with its showtime and movie. Missing reference
// data is left nil.
func enrich(doc *model.Document, booking model.Booking) *model.EnrichedBooking {
	booking.Seats = slices.Clone(booking.Seats)
	e := &model.EnrichedBooking{Booking: booking}
	if session, ok := repository.NewShowtimeRepo(doc).GetByID(booking.SessionID); ok {
		e.Session = session
		if movie, ok := repository.NewMovieRepo(doc).GetByID(session.MovieID); ok {
			e.Movie = movie
		}
	}
	return e
}

func sortedSeats(set map[int]struct{}) []int {
	seats := make([]int, 0, len(set))
	for seat := range set {
		seats = append(seats, seat)
	}
	slices.Sort(seats)
	return seats
}
