package model

import (
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"fullName"`
	PasswordSalt string    `json:"passwordSalt"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the projection of a User that may leave the process.
type PublicUser struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}

type AuthToken struct {
	Token     string    `json:"token"`
	UserID    int       `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Movie struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DurationMin int    `json:"durationMin"`
	AgeRating   string `json:"ageRating"`
}

// Session is a showtime: one screening of a movie in a hall.
type Session struct {
	ID         int       `json:"id"`
	MovieID    int       `json:"movieId"`
	StartTime  time.Time `json:"startTime"`
	Hall       string    `json:"hall"`
	Price      int       `json:"price"`
	TotalSeats int       `json:"totalSeats"`
}

type Booking struct {
	ID           int       `json:"id"`
	SessionID    int       `json:"sessionId"`
	UserID       int       `json:"userId"`
	CustomerName string    `json:"customerName"`
	Seats        []int     `json:"seats"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EnrichedBooking is a Booking joined with its showtime and movie.
// Session and Movie are nil when the reference data is gone.
type EnrichedBooking struct {
	Booking
	Session *Session `json:"session"`
	Movie   *Movie   `json:"movie"`
}

type MovieWithSessions struct {
	Movie
	Sessions []Session `json:"sessions"`
}

type SeatMap struct {
	SessionID   int   `json:"sessionId"`
	TotalSeats  int   `json:"totalSeats"`
	BookedSeats []int `json:"bookedSeats"`
}
