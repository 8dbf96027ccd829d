package domain

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/store"
)

func newTestStore(t *testing.T) *store.JSONStore {
	t.Helper()
	s, err := store.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	return s
}

// seedCatalog adds one movie with a single showtime of totalSeats seats.
func seedCatalog(t *testing.T, s store.Store, totalSeats int) (movieID, sessionID int) {
	t.Helper()
	err := s.Update(context.Background(), func(doc *model.Document) error {
		movieID = doc.NextID(model.CollectionMovies)
		doc.Movies = append(doc.Movies, model.Movie{ID: movieID, Title: "Stalker", DurationMin: 161, AgeRating: "12+"})
		sessionID = doc.NextID(model.CollectionSessions)
		doc.Sessions = append(doc.Sessions, model.Session{
			ID:         sessionID,
			MovieID:    movieID,
			StartTime:  time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC),
			Hall:       "Hall 1",
			Price:      450,
			TotalSeats: totalSeats,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return movieID, sessionID
}

// seedUser inserts a user without running the slow key derivation.
func seedUser(t *testing.T, s store.Store, username, fullName string) int {
	t.Helper()
	var id int
	err := s.Update(context.Background(), func(doc *model.Document) error {
		id = doc.NextID(model.CollectionUsers)
		doc.Users = append(doc.Users, model.User{ID: id, Username: username, FullName: fullName, CreatedAt: time.Now().UTC()})
		return nil
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}
