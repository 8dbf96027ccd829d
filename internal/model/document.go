package model

import (
	"fmt"
	"slices"
)

// collection names, also the keys of Document.Sequences
const (
	CollectionUsers    = "users"
	CollectionMovies   = "movies"
	CollectionSessions = "sessions"
	CollectionBookings = "bookings"
)

// Document is the whole persisted state of the cinema.
type Document struct {
	Users      []User         `json:"users"`
	AuthTokens []AuthToken    `json:"authTokens"`
	Movies     []Movie        `json:"movies"`
	Sessions   []Session      `json:"sessions"`
	Bookings   []Booking      `json:"bookings"`
	Sequences  map[string]int `json:"sequences,omitempty"`
}

func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize replaces absent collections with empty ones.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.AuthTokens == nil {
		d.AuthTokens = []AuthToken{}
	}
	if d.Movies == nil {
		d.Movies = []Movie{}
	}
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
	if d.Bookings == nil {
		d.Bookings = []Booking{}
	}
	if d.Sequences == nil {
		d.Sequences = map[string]int{}
	}
}

// Validate checks the shape of a freshly decoded document.
func (d *Document) Validate() error {
	if err := uniquePositive(CollectionUsers, d.Users, func(u User) int { return u.ID }); err != nil {
		return err
	}
	if err := uniquePositive(CollectionMovies, d.Movies, func(m Movie) int { return m.ID }); err != nil {
		return err
	}
	if err := uniquePositive(CollectionSessions, d.Sessions, func(s Session) int { return s.ID }); err != nil {
		return err
	}
	if err := uniquePositive(CollectionBookings, d.Bookings, func(b Booking) int { return b.ID }); err != nil {
		return err
	}
	for _, s := range d.Sessions {
		if s.TotalSeats < 1 {
			return fmt.Errorf("session %d: totalSeats must be at least 1, got %d", s.ID, s.TotalSeats)
		}
	}
	tokens := make(map[string]struct{}, len(d.AuthTokens))
	for _, t := range d.AuthTokens {
		if t.Token == "" {
			return fmt.Errorf("authTokens: empty token for user %d", t.UserID)
		}
		if _, ok := tokens[t.Token]; ok {
			return fmt.Errorf("authTokens: duplicate token")
		}
		tokens[t.Token] = struct{}{}
	}
	return nil
}

func uniquePositive[T any](collection string, items []T, id func(T) int) error {
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		v := id(item)
		if v <= 0 {
			return fmt.Errorf("%s: id must be positive, got %d", collection, v)
		}
		if _, ok := seen[v]; ok {
			return fmt.Errorf("%s: duplicate id %d", collection, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// NextID allocates the next id of a collection. The counter only moves
// forward and never falls at or below an id already present, so a stale
// or hand-edited sequence cannot hand out a taken id.
func (d *Document) NextID(collection string) int {
	if d.Sequences == nil {
		d.Sequences = map[string]int{}
	}
	next := max(d.Sequences[collection], d.maxID(collection)+1)
	d.Sequences[collection] = next + 1
	return next
}

func (d *Document) maxID(collection string) int {
	maxID := 0
	switch collection {
	case CollectionUsers:
		for _, u := range d.Users {
			maxID = max(maxID, u.ID)
		}
	case CollectionMovies:
		for _, m := range d.Movies {
			maxID = max(maxID, m.ID)
		}
	case CollectionSessions:
		for _, s := range d.Sessions {
			maxID = max(maxID, s.ID)
		}
	case CollectionBookings:
		for _, b := range d.Bookings {
			maxID = max(maxID, b.ID)
		}
	}
	return maxID
}

// Clone returns a deep copy, so a mutation can be discarded on failure.
func (d *Document) Clone() *Document {
	c := &Document{
		Users:      slices.Clone(d.Users),
		AuthTokens: slices.Clone(d.AuthTokens),
		Movies:     slices.Clone(d.Movies),
		Sessions:   slices.Clone(d.Sessions),
		Bookings:   make([]Booking, len(d.Bookings)),
		Sequences:  make(map[string]int, len(d.Sequences)),
	}
	for i, b := range d.Bookings {
		b.Seats = slices.Clone(b.Seats)
		c.Bookings[i] = b
	}
	for k, v := range d.Sequences {
		c.Sequences[k] = v
	}
	c.Normalize()
	return c
}
