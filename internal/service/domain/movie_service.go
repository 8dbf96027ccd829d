package domain

import (
	"context"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/store"
)

type MovieService interface {
	CreateMovie(ctx context.Context, movie *model.Movie) error
	GetMovieByID(ctx context.Context, id int) (*model.Movie, error)
	GetAllMovies(ctx context.Context) ([]model.MovieWithSessions, error)
}

type movieService struct {
	store store.Store
}

var _ MovieService = (*movieService)(nil)

func NewMovieService(s store.Store) *movieService {
	return &movieService{
		store: s,
	}
}

func (s *movieService) CreateMovie(ctx context.Context, movie *model.Movie) error {
	if movie.Title == "" {
		return service.Validation("movie title is required")
	}
	return s.store.Update(ctx, func(doc *model.Document) error {
		movies := repository.NewMovieRepo(doc)
		if _, exists := movies.GetByTitle(movie.Title); exists {
			return service.Conflict("movie %q already exists", movie.Title)
		}
		movies.Create(movie)
		return nil
	})
}

func (s *movieService) GetMovieByID(ctx context.Context, id int) (*model.Movie, error) {
	var movie *model.Movie
	err := s.store.View(ctx, func(doc *model.Document) error {
		m, ok := repository.NewMovieRepo(doc).GetByID(id)
		if !ok {
			return service.NotFound("movie not found")
		}
		movie = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movie, nil
}

// GetAllMovies lists movies, each with its showtimes.
func (s *movieService) GetAllMovies(ctx context.Context) ([]model.MovieWithSessions, error) {
	movies := []model.MovieWithSessions{}
	err := s.store.View(ctx, func(doc *model.Document) error {
		showtimes := repository.NewShowtimeRepo(doc)
		for _, m := range repository.NewMovieRepo(doc).ListAll() {
			movies = append(movies, model.MovieWithSessions{
				Movie:    m,
				Sessions: showtimes.GetByMovieID(m.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}
