package domain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/qs-lzh/cinema-booking/internal/cache"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/service"
)

type memoryTokenCache struct {
	mu     sync.Mutex
	tokens map[string]int
	err    error
}

func newMemoryTokenCache() *memoryTokenCache {
	return &memoryTokenCache{tokens: map[string]int{}}
}

func (c *memoryTokenCache) SetToken(_ context.Context, token string, userID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[token] = userID
	return nil
}

func (c *memoryTokenCache) GetToken(_ context.Context, token string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.tokens[token]
	if !ok {
		return 0, cache.ErrCacheMiss
	}
	return id, nil
}

func (c *memoryTokenCache) DeleteTokens(_ context.Context, tokens ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	for _, t := range tokens {
		delete(c.tokens, t)
	}
	return nil
}

func TestTokenService_IssueResolveRevoke(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "Alice A")

	for _, name := range []string{"without cache", "with cache"} {
		t.Run(name, func(t *testing.T) {
			var tc TokenCache
			if name == "with cache" {
				tc = newMemoryTokenCache()
			}
			tokens := NewTokenService(s, tc, nil)

			token, err := tokens.Issue(ctx, userID)
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			if len(token) != TokenBytes*2 {
				t.Fatalf("token length = %d", len(token))
			}

			user, err := tokens.Resolve(ctx, token)
			if err != nil || user == nil || user.ID != userID {
				t.Fatalf("Resolve = %+v, %v", user, err)
			}

			if err := tokens.Revoke(ctx, token); err != nil {
				t.Fatalf("Revoke: %v", err)
			}
			if err := tokens.Revoke(ctx, token); err != nil {
				t.Fatalf("second Revoke should be a no-op: %v", err)
			}
			user, err = tokens.Resolve(ctx, token)
			if err != nil || user != nil {
				t.Fatalf("revoked token resolved to %+v, %v", user, err)
			}
		})
	}
}

func TestTokenService_MultipleSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "Alice A")
	tokens := NewTokenService(s, nil, nil)

	first, _ := tokens.Issue(ctx, userID)
	second, _ := tokens.Issue(ctx, userID)
	if first == second {
		t.Fatalf("tokens collide")
	}
	_ = tokens.Revoke(ctx, first)

	if u, _ := tokens.Resolve(ctx, second); u == nil {
		t.Fatalf("revoking one token must not end the other session")
	}
}

func TestTokenService_UnknownAndDangling(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tokens := NewTokenService(s, nil, nil)

	if u, err := tokens.Resolve(ctx, "nope"); u != nil || err != nil {
		t.Fatalf("unknown token = %+v, %v", u, err)
	}
	if u, err := tokens.Resolve(ctx, ""); u != nil || err != nil {
		t.Fatalf("empty token = %+v, %v", u, err)
	}

	// token of a user that no longer exists
	token, err := tokens.Issue(ctx, 99)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if u, err := tokens.Resolve(ctx, token); u != nil || err != nil {
		t.Fatalf("dangling token = %+v, %v", u, err)
	}
	if _, err := tokens.Authorize(ctx, token); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("Authorize dangling = %v, want unauthorized", err)
	}
}

func TestTokenService_RevokeRemovesFromDocumentWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "Alice A")
	tc := newMemoryTokenCache()
	tokens := NewTokenService(s, tc, nil)

	token, _ := tokens.Issue(ctx, userID)
	tc.err = errors.New("redis down")

	if err := tokens.Revoke(ctx, token); err == nil {
		t.Fatalf("expected cache error to be reported")
	}
	_ = s.View(ctx, func(doc *model.Document) error {
		if len(doc.AuthTokens) != 0 {
			t.Errorf("token still stored: %+v", doc.AuthTokens)
		}
		return nil
	})

	// the cache still holds the token once redis is back
	tc.err = nil
	if _, err := tc.GetToken(ctx, token); err != nil {
		t.Fatalf("expected a stale cache entry, got %v", err)
	}
	if user, err := tokens.Authorize(ctx, token); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("revoked token authorized %+v, err %v", user, err)
	}
	if _, err := tc.GetToken(ctx, token); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("stale entry not evicted: %v", err)
	}
}
