package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/cinema-booking/config"
	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	app       *app.App
	router    *gin.Engine
	sessionID int
}

// newTestServer serves a fresh document with one showtime of totalSeats seats.
func newTestServer(t *testing.T, totalSeats int) *testServer {
	t.Helper()
	s, err := store.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	var sessionID int
	err = s.Update(context.Background(), func(doc *model.Document) error {
		doc.Movies = append(doc.Movies, model.Movie{ID: doc.NextID(model.CollectionMovies), Title: "Alien", DurationMin: 117})
		sessionID = doc.NextID(model.CollectionSessions)
		doc.Sessions = append(doc.Sessions, model.Session{
			ID: sessionID, MovieID: 1, StartTime: time.Now().UTC(), Hall: "Hall 1", Price: 400, TotalSeats: totalSeats,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	a := app.New(&config.Config{}, s, nil, nil, nil)
	t.Cleanup(func() { _ = a.Close() })
	return &testServer{app: a, router: NewRouter(a), sessionID: sessionID}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any, []byte) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var obj map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &obj)
	return rec.Code, obj, rec.Body.Bytes()
}

func (ts *testServer) registerAndLogin(t *testing.T, username, fullName string) string {
	t.Helper()
	code, _, raw := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username, "fullName": fullName, "password": "secret1",
	})
	if code != http.StatusCreated {
		t.Fatalf("register %s = %d %s", username, code, raw)
	}
	code, body, raw := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username, "password": "secret1",
	})
	if code != http.StatusOK {
		t.Fatalf("login %s = %d %s", username, code, raw)
	}
	return body["token"].(string)
}

func seatsOf(v any) []int {
	raw, _ := v.([]any)
	seats := make([]int, 0, len(raw))
	for _, s := range raw {
		seats = append(seats, int(s.(float64)))
	}
	return seats
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t, 10)

	code, body, raw := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "fullName": "Alice A", "password": "secret1",
	})
	if code != http.StatusCreated {
		t.Fatalf("register = %d %s", code, raw)
	}
	user := body["user"].(map[string]any)
	if user["username"] != "alice" || user["passwordHash"] != nil || user["passwordSalt"] != nil {
		t.Fatalf("register user = %v", user)
	}

	code, body, _ = ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret1"})
	if code != http.StatusOK || body["token"] == "" {
		t.Fatalf("login = %d %v", code, body)
	}
	token := body["token"].(string)

	code, wrong, _ := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	if code != http.StatusUnauthorized {
		t.Fatalf("wrong password = %d", code)
	}
	code, unknown, _ := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "nobody", "password": "secret1"})
	if code != http.StatusUnauthorized || unknown["error"] != wrong["error"] {
		t.Fatalf("unknown user = %d %v, wrong password %v", code, unknown, wrong)
	}

	code, body, _ = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	if code != http.StatusOK || body["user"].(map[string]any)["fullName"] != "Alice A" {
		t.Fatalf("me = %d %v", code, body)
	}

	code, _, _ = ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	if code != http.StatusOK {
		t.Fatalf("logout = %d", code)
	}
	code, _, _ = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", code)
	}
}

func TestRegisterValidationAndConflict(t *testing.T) {
	ts := newTestServer(t, 10)

	code, _, _ := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "AB", "fullName": "Ab", "password": "secret1"})
	if code != http.StatusBadRequest {
		t.Fatalf("short username = %d", code)
	}
	code, _, _ = ts.do(t, http.MethodPost, "/api/auth/register", "", "{not json")
	if code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d", code)
	}

	req := gin.H{"username": "carol", "fullName": "Carol C", "password": "secret1"}
	if code, _, _ = ts.do(t, http.MethodPost, "/api/auth/register", "", req); code != http.StatusCreated {
		t.Fatalf("first register = %d", code)
	}
	if code, _, _ = ts.do(t, http.MethodPost, "/api/auth/register", "", req); code != http.StatusConflict {
		t.Fatalf("second register = %d", code)
	}
}

func TestLogoutAlwaysOK(t *testing.T) {
	ts := newTestServer(t, 10)
	for _, token := range []string{"", "not-a-token"} {
		code, body, _ := ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)
		if code != http.StatusOK || body["ok"] != true {
			t.Fatalf("logout with %q = %d %v", token, code, body)
		}
	}
}

func TestReserveConflict(t *testing.T) {
	ts := newTestServer(t, 10)
	tokenA := ts.registerAndLogin(t, "alice", "Alice A")
	tokenB := ts.registerAndLogin(t, "bob", "Bob B")

	code, body, raw := ts.do(t, http.MethodPost, "/api/bookings", tokenA, gin.H{"sessionId": ts.sessionID, "seats": []int{3, 4}})
	if code != http.StatusCreated {
		t.Fatalf("reserve A = %d %s", code, raw)
	}
	if !slices.Equal(seatsOf(body["seats"]), []int{3, 4}) || body["customerName"] != "Alice A" {
		t.Fatalf("booking = %v", body)
	}
	if body["session"] == nil || body["movie"].(map[string]any)["title"] != "Alien" {
		t.Fatalf("booking not enriched: %v", body)
	}

	code, body, _ = ts.do(t, http.MethodPost, "/api/bookings", tokenB, gin.H{"sessionId": ts.sessionID, "seats": []int{4, 5}})
	if code != http.StatusConflict || !slices.Equal(seatsOf(body["busySeats"]), []int{4}) {
		t.Fatalf("reserve B = %d %v", code, body)
	}

	code, body, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/sessions/%d/seats", ts.sessionID), "", nil)
	if code != http.StatusOK || !slices.Equal(seatsOf(body["bookedSeats"]), []int{3, 4}) || body["totalSeats"] != float64(10) {
		t.Fatalf("seats = %d %v", code, body)
	}
}

func TestReserveErrors(t *testing.T) {
	ts := newTestServer(t, 10)
	token := ts.registerAndLogin(t, "alice", "Alice A")

	tests := []struct {
		name  string
		token string
		body  any
		want  int
	}{
		{"no token", "", gin.H{"sessionId": ts.sessionID, "seats": []int{1}}, http.StatusUnauthorized},
		{"bad token with bad body", "bogus", "{", http.StatusUnauthorized},
		{"unknown session", token, gin.H{"sessionId": 999, "seats": []int{1}}, http.StatusNotFound},
		{"unknown session before seat validation", token, gin.H{"sessionId": 999, "seats": []int{}}, http.StatusNotFound},
		{"empty seats", token, gin.H{"sessionId": ts.sessionID, "seats": []int{}}, http.StatusBadRequest},
		{"out of range", token, gin.H{"sessionId": ts.sessionID, "seats": []int{11}}, http.StatusBadRequest},
		{"fractional seat", token, `{"sessionId":1,"seats":[1.5]}`, http.StatusBadRequest},
		{"missing session id", token, gin.H{"seats": []int{1}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, raw := ts.do(t, http.MethodPost, "/api/bookings", tt.token, tt.body)
			if code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", code, tt.want, raw)
			}
		})
	}
}

func TestCancelOwnership(t *testing.T) {
	ts := newTestServer(t, 10)
	tokenA := ts.registerAndLogin(t, "alice", "Alice A")
	tokenB := ts.registerAndLogin(t, "bob", "Bob B")

	_, body, _ := ts.do(t, http.MethodPost, "/api/bookings", tokenA, gin.H{"sessionId": ts.sessionID, "seats": []int{1, 2}})
	bookingPath := fmt.Sprintf("/api/bookings/%d", int(body["id"].(float64)))

	if code, _, _ := ts.do(t, http.MethodDelete, bookingPath, tokenB, nil); code != http.StatusForbidden {
		t.Fatalf("foreign cancel = %d", code)
	}
	if code, _, _ := ts.do(t, http.MethodDelete, "/api/bookings/999", tokenA, nil); code != http.StatusNotFound {
		t.Fatalf("unknown cancel = %d", code)
	}
	if code, _, _ := ts.do(t, http.MethodDelete, bookingPath, "", nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous cancel = %d", code)
	}
	if code, _, _ := ts.do(t, http.MethodDelete, bookingPath, tokenA, nil); code != http.StatusOK {
		t.Fatalf("own cancel = %d", code)
	}

	_, body, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/sessions/%d/seats", ts.sessionID), "", nil)
	if seats := seatsOf(body["bookedSeats"]); slices.Contains(seats, 1) || slices.Contains(seats, 2) {
		t.Fatalf("seats still booked after cancel: %v", seats)
	}
	if code, _, _ := ts.do(t, http.MethodPost, "/api/bookings", tokenB, gin.H{"sessionId": ts.sessionID, "seats": []int{1, 2}}); code != http.StatusCreated {
		t.Fatalf("rebook freed seats = %d", code)
	}
}

func TestMyBookings(t *testing.T) {
	ts := newTestServer(t, 10)
	token := ts.registerAndLogin(t, "alice", "Alice A")

	for _, seat := range []int{1, 2} {
		if code, _, _ := ts.do(t, http.MethodPost, "/api/bookings", token, gin.H{"sessionId": ts.sessionID, "seats": []int{seat}}); code != http.StatusCreated {
			t.Fatalf("reserve = %d", code)
		}
	}

	code, _, raw := ts.do(t, http.MethodGet, "/api/bookings/my", token, nil)
	if code != http.StatusOK {
		t.Fatalf("my bookings = %d", code)
	}
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("bookings = %v", list)
	}
	// newest first
	if seatsOf(list[0]["seats"])[0] != 2 {
		t.Fatalf("order = %v", list)
	}

	if code, _, _ := ts.do(t, http.MethodGet, "/api/bookings/my", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous my bookings = %d", code)
	}
}

func TestConcurrentReserveSameSeats(t *testing.T) {
	ts := newTestServer(t, 10)
	tokens := []string{ts.registerAndLogin(t, "alice", "Alice A"), ts.registerAndLogin(t, "bob", "Bob B")}

	var wg sync.WaitGroup
	codes := make([]int, len(tokens))
	for i, token := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i], _, _ = ts.do(t, http.MethodPost, "/api/bookings", token, gin.H{"sessionId": ts.sessionID, "seats": []int{5, 6}})
		}()
	}
	wg.Wait()

	slices.Sort(codes)
	if !slices.Equal(codes, []int{http.StatusCreated, http.StatusConflict}) {
		t.Fatalf("codes = %v, want one 201 and one 409", codes)
	}
}

func TestCatalogAndRouting(t *testing.T) {
	ts := newTestServer(t, 10)

	code, _, raw := ts.do(t, http.MethodGet, "/api/movies", "", nil)
	var movies []map[string]any
	_ = json.Unmarshal(raw, &movies)
	if code != http.StatusOK || len(movies) != 1 || len(movies[0]["sessions"].([]any)) != 1 {
		t.Fatalf("movies = %d %s", code, raw)
	}

	code, _, raw = ts.do(t, http.MethodGet, "/api/sessions?movieId=42", "", nil)
	if code != http.StatusOK || string(raw) != "[]" {
		t.Fatalf("sessions of unknown movie = %d %s", code, raw)
	}

	if code, _, _ := ts.do(t, http.MethodGet, "/api/sessions/999/seats", "", nil); code != http.StatusNotFound {
		t.Fatalf("seats of unknown session = %d", code)
	}

	code, body, _ := ts.do(t, http.MethodGet, "/api/nope", "", nil)
	if code != http.StatusNotFound || body["error"] != "API route not found" {
		t.Fatalf("unknown api route = %d %v", code, body)
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("request id = %q", got)
	}

	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("request id not generated")
	}
}
