package app

import (
	"context"
	"time"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

type catalogEntry struct {
	movie    model.Movie
	sessions []model.Session
}

func demoCatalog(day time.Time) []catalogEntry {
	at := func(hour, minute int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	}
	return []catalogEntry{
		{
			movie: model.Movie{Title: "Interstellar", Description: "A team of explorers travels through a wormhole in space.", DurationMin: 169, AgeRating: "12+"},
			sessions: []model.Session{
				{StartTime: at(12, 0), Hall: "Hall 1", Price: 350, TotalSeats: 40},
				{StartTime: at(19, 30), Hall: "Hall 1", Price: 500, TotalSeats: 40},
			},
		},
		{
			movie: model.Movie{Title: "Spirited Away", Description: "A girl wanders into a world of spirits.", DurationMin: 125, AgeRating: "6+"},
			sessions: []model.Session{
				{StartTime: at(15, 0), Hall: "Hall 2", Price: 300, TotalSeats: 30},
			},
		},
		{
			movie: model.Movie{Title: "The Matrix", Description: "A hacker learns the truth about his reality.", DurationMin: 136, AgeRating: "16+"},
			sessions: []model.Session{
				{StartTime: at(21, 0), Hall: "Hall 2", Price: 450, TotalSeats: 30},
			},
		},
	}
}

// SeedCatalog fills an empty catalog with demo movies and showtimes for the
// next day. It reports whether anything was added.
func (app *App) SeedCatalog(ctx context.Context) (bool, error) {
	movies, err := app.MovieService.GetAllMovies(ctx)
	if err != nil {
		return false, err
	}
	if len(movies) > 0 {
		return false, nil
	}

	day := time.Now().UTC().AddDate(0, 0, 1)
	for _, entry := range demoCatalog(day) {
		movie := entry.movie
		if err := app.MovieService.CreateMovie(ctx, &movie); err != nil {
			return false, err
		}
		for _, session := range entry.sessions {
			session.MovieID = movie.ID
			if err := app.ShowtimeService.CreateShowtime(ctx, &session); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}
