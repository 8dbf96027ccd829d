package domain

import (
	"context"
	"slices"
	"time"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/store"
)

type ShowtimeService interface {
	CreateShowtime(ctx context.Context, session *model.Session) error
	GetShowtimeByID(ctx context.Context, sessionID int) (*model.Session, error)
	GetShowtimesByMovieID(ctx context.Context, movieID int) ([]model.Session, error)
	GetAllShowtimes(ctx context.Context) ([]model.Session, error)
}

type showtimeService struct {
	store store.Store
}

var _ ShowtimeService = (*showtimeService)(nil)

func NewShowtimeService(s store.Store) *showtimeService {
	return &showtimeService{
		store: s,
	}
}

func (s *showtimeService) CreateShowtime(ctx context.Context, session *model.Session) error {
	if session.TotalSeats < 1 {
		return service.Validation("totalSeats must be at least 1")
	}
	if session.StartTime.IsZero() {
		return service.Validation("startTime is required")
	}
	session.StartTime = session.StartTime.Truncate(time.Second)
	return s.store.Update(ctx, func(doc *model.Document) error {
		if _, ok := repository.NewMovieRepo(doc).GetByID(session.MovieID); !ok {
			return service.NotFound("movie not found")
		}
		repository.NewShowtimeRepo(doc).Create(session)
		return nil
	})
}

func (s *showtimeService) GetShowtimeByID(ctx context.Context, sessionID int) (*model.Session, error) {
	var session *model.Session
	err := s.store.View(ctx, func(doc *model.Document) error {
		st, ok := repository.NewShowtimeRepo(doc).GetByID(sessionID)
		if !ok {
			return service.NotFound("session not found")
		}
		session = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *showtimeService) GetShowtimesByMovieID(ctx context.Context, movieID int) ([]model.Session, error) {
	var sessions []model.Session
	err := s.store.View(ctx, func(doc *model.Document) error {
		sessions = repository.NewShowtimeRepo(doc).GetByMovieID(movieID)
		return nil
	})
	return sessions, err
}

func (s *showtimeService) GetAllShowtimes(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	err := s.store.View(ctx, func(doc *model.Document) error {
		sessions = slices.Clone(repository.NewShowtimeRepo(doc).ListAll())
		return nil
	})
	return sessions, err
}
