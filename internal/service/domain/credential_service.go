package domain

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/store"
)

// PBKDF2-SHA512 parameters of stored password digests
const (
	HashIterations = 120000
	HashKeyLength  = 64
	SaltBytes      = 16
	MinPasswordLen = 6
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,24}$`)

// dummySalt keeps login timing the same for unknown usernames.
var dummySalt = strings.Repeat("0", SaltBytes*2)

const invalidCredentialsMsg = "invalid credentials"

// HashPassword derives the hex digest stored for a password and salt.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), HashIterations, HashKeyLength, sha512.New)
	return hex.EncodeToString(key)
}

func NewSalt() (string, error) {
	b := make([]byte, SaltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type CredentialService interface {
	Register(ctx context.Context, username, fullName, password string) (model.PublicUser, error)
	Verify(ctx context.Context, username, password string) (*model.User, error)
}

type credentialService struct {
	store store.Store
	now   func() time.Time
}

var _ CredentialService = (*credentialService)(nil)

func NewCredentialService(s store.Store) *credentialService {
	return &credentialService{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *credentialService) Register(ctx context.Context, username, fullName, password string) (model.PublicUser, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	fullName = strings.TrimSpace(fullName)

	if username == "" || fullName == "" || strings.TrimSpace(password) == "" {
		return model.PublicUser{}, service.Validation("username, fullName and password are required")
	}
	if !usernamePattern.MatchString(username) {
		return model.PublicUser{}, service.Validation("username must be 3-24 characters: lowercase latin letters, digits or underscore")
	}
	if len(password) < MinPasswordLen {
		return model.PublicUser{}, service.Validation("password must be at least %d characters", MinPasswordLen)
	}

	salt, err := NewSalt()
	if err != nil {
		return model.PublicUser{}, err
	}
	// derive outside the store lock, it is the slow part
	hash := HashPassword(password, salt)

	var created model.User
	err = s.store.Update(ctx, func(doc *model.Document) error {
		users := repository.NewUserRepo(doc)
		if _, exists := users.GetByUsername(username); exists {
			return service.Conflict("user %q already exists", username)
		}
		created = model.User{
			Username:     username,
			FullName:     fullName,
			PasswordSalt: salt,
			PasswordHash: hash,
			CreatedAt:    s.now(),
		}
		users.Create(&created)
		return nil
	})
	if err != nil {
		return model.PublicUser{}, err
	}
	return created.Public(), nil
}

// Verify returns the same error for an unknown user and a wrong password.
func (s *credentialService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var user *model.User
	err := s.store.View(ctx, func(doc *model.Document) error {
		user, _ = repository.NewUserRepo(doc).GetByUsername(username)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if user == nil {
		_ = HashPassword(password, dummySalt)
		return nil, service.Unauthorized(invalidCredentialsMsg)
	}
	digest := HashPassword(password, user.PasswordSalt)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(user.PasswordHash)) != 1 {
		return nil, service.Unauthorized(invalidCredentialsMsg)
	}
	return user, nil
}
