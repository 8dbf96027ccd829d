package domain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/cache"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/store"
)

// TokenBytes of entropy per bearer token, hex encoded on the wire.
const TokenBytes = 24

// TokenCache is an optional fast path for token lookups.
type TokenCache interface {
	SetToken(ctx context.Context, token string, userID int) error
	GetToken(ctx context.Context, token string) (int, error)
	DeleteTokens(ctx context.Context, tokens ...string) error
}

type TokenService interface {
	Issue(ctx context.Context, userID int) (string, error)
	Resolve(ctx context.Context, token string) (*model.User, error)
	Revoke(ctx context.Context, token string) error
	Authorize(ctx context.Context, token string) (*model.User, error)
}

type tokenService struct {
	store  store.Store
	cache  TokenCache
	logger *zap.Logger
	now    func() time.Time
}

var _ TokenService = (*tokenService)(nil)

// NewTokenService builds the session issuer. cache may be nil.
func NewTokenService(s store.Store, tokenCache TokenCache, logger *zap.Logger) *tokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tokenService{
		store:  s,
		cache:  tokenCache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func newToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Issue stores a new token for userID. Older tokens of the user stay valid.
func (s *tokenService) Issue(ctx context.Context, userID int) (string, error) {
	var token string
	err := s.store.Update(ctx, func(doc *model.Document) error {
		tokens := repository.NewTokenRepo(doc)
		for {
			t, err := newToken()
			if err != nil {
				return err
			}
			if _, taken := tokens.Get(t); !taken {
				token = t
				break
			}
		}
		tokens.Create(model.AuthToken{
			Token:     token,
			UserID:    userID,
			CreatedAt: s.now(),
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	// the cache is only filled here, so a revoke can never race a refill
	if s.cache != nil {
		if err := s.cache.SetToken(ctx, token, userID); err != nil {
			s.logger.Warn("cache token", zap.Int("user_id", userID), zap.Error(err))
		}
	}
	return token, nil
}

// Resolve returns nil, nil for unknown tokens and for tokens whose user is gone.
// The document is authoritative: a cache hit for a token that is no longer
// stored resolves to nil and the stale entry is evicted.
func (s *tokenService) Resolve(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	cachedUserID := 0
	if s.cache != nil {
		userID, err := s.cache.GetToken(ctx, token)
		switch {
		case err == nil:
			cachedUserID = userID
		case errors.Is(err, cache.ErrCacheMiss):
		default:
			s.logger.Warn("read token cache", zap.Error(err))
		}
	}

	var user *model.User
	stale := false
	err := s.store.View(ctx, func(doc *model.Document) error {
		auth, ok := repository.NewTokenRepo(doc).Get(token)
		if !ok {
			stale = cachedUserID != 0
			return nil
		}
		user, _ = repository.NewUserRepo(doc).GetByID(auth.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stale {
		if err := s.cache.DeleteTokens(ctx, token); err != nil {
			s.logger.Warn("evict stale token", zap.Error(err))
		}
	}
	return user, nil
}

// Revoke is idempotent, unknown tokens are not an error. Once the document
// entry is gone the token no longer resolves, even if eviction failed.
func (s *tokenService) Revoke(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	var cacheErr error
	if s.cache != nil {
		if err := s.cache.DeleteTokens(ctx, token); err != nil {
			cacheErr = fmt.Errorf("evict token from cache: %w", err)
		}
	}

	err := s.store.Update(ctx, func(doc *model.Document) error {
		repository.NewTokenRepo(doc).Delete(token)
		return nil
	})
	return errors.Join(err, cacheErr)
}

// Authorize is Resolve for protected operations: no user means ErrUnauthorized.
func (s *tokenService) Authorize(ctx context.Context, token string) (*model.User, error) {
	user, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, service.Unauthorized("authorization required")
	}
	return user, nil
}
