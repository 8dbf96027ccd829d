package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/qs-lzh/cinema-booking/config"
	"github.com/qs-lzh/cinema-booking/internal/model"
)

type closeRecordingStore struct {
	closed int
}

func (s *closeRecordingStore) View(context.Context, func(doc *model.Document) error) error {
	return nil
}

func (s *closeRecordingStore) Update(context.Context, func(doc *model.Document) error) error {
	return nil
}

func (s *closeRecordingStore) Close() error {
	s.closed++
	return nil
}

func TestOpenBackends_ClosesStoreOnFailure(t *testing.T) {
	// an address nothing listens on
	dead, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	deadAddr := dead.Addr()
	dead.Close()

	live, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	defer live.Close()

	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"redis ping fails", &config.Config{CacheURL: deadAddr}},
		{"rabbitmq dial fails", &config.Config{CacheURL: live.Addr(), MQURL: "amqp://guest:guest@" + deadAddr + "/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &closeRecordingStore{}
			redisCache, mqConn, err := openBackends(context.Background(), tt.cfg, s)
			if err == nil {
				t.Fatalf("expected error")
			}
			if redisCache != nil || mqConn != nil {
				t.Fatalf("backends returned on failure: %v %v", redisCache, mqConn)
			}
			if s.closed != 1 {
				t.Fatalf("store closed %d times, want 1", s.closed)
			}
		})
	}
}

func TestOpenBackends_NoneConfigured(t *testing.T) {
	s := &closeRecordingStore{}
	redisCache, mqConn, err := openBackends(context.Background(), &config.Config{}, s)
	if err != nil || redisCache != nil || mqConn != nil {
		t.Fatalf("openBackends = %v %v %v", redisCache, mqConn, err)
	}
	if s.closed != 0 {
		t.Fatalf("store closed without a failure")
	}
}
