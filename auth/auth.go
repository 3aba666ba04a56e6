/*
Package auth issues and verifies bearer tokens for the work tracker.

PURPOSE:
  Standalone collaborator of the persistence core: register, login,
  change-password and me. The works API is unaffected by whether a
  token is present; gating is opt-in at the router level.

TOKENS:
  HS256 JWTs carrying the user id and username, valid for seven days.

PASSWORDS:
  bcrypt, cost 12 by default. Usernames are at least 3 characters,
  passwords at least 8.

SEE ALSO:
  - store.go: sqlite-backed user records
  - api: HTTP handlers and the bearer middleware
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLen = 3
	minPasswordLen = 8

	// DefaultTokenTTL is how long an issued token stays valid.
	DefaultTokenTTL = 7 * 24 * time.Hour
)

var (
	// ErrInvalidCredentials is returned for a wrong username or password.
	// Deliberately indistinguishable between the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrUserNotFound is returned when a token references a deleted user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidToken is returned for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrWeakCredentials is returned when username or password is too short.
	ErrWeakCredentials = errors.New("username or password too short")
)

// User is the public view of an account.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Claims is what a verified token asserts.
type Claims struct {
	UserID   int64
	Username string
}

// Service implements the auth operations over a UserStore.
type Service struct {
	store  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
}

// Option customizes a Service.
type Option func(*Service)

// WithTokenTTL overrides the token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithBcryptCost overrides the hashing cost (tests use bcrypt.MinCost).
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService creates an auth service signing tokens with secret.
func NewService(store UserStore, secret []byte, opts ...Option) *Service {
	s := &Service{
		store:  store,
		secret: secret,
		ttl:    DefaultTokenTTL,
		cost:   12,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account and returns a fresh token for it.
func (s *Service) Register(ctx context.Context, username, password string) (string, *User, error) {
	if len(username) < minUsernameLen || len(password) < minPasswordLen {
		return "", nil, ErrWeakCredentials
	}

	existing, err := s.store.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", nil, err
	}
	if existing != nil {
		return "", nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Create(ctx, username, string(hash))
	if err != nil {
		return "", nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login verifies the credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	rec, err := s.store.GetRecordByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	user := &User{ID: rec.ID, Username: rec.Username, CreatedAt: rec.CreatedAt}
	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ChangePassword verifies the old password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrWeakCredentials
	}

	rec, err := s.store.GetRecordByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdatePassword(ctx, userID, string(hash))
}

// Me returns the account a verified token belongs to.
func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	rec, err := s.store.GetRecordByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &User{ID: rec.ID, Username: rec.Username, CreatedAt: rec.CreatedAt}, nil
}

// issue signs a token for user.
func (s *Service) issue(user *User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	username, _ := claims["username"].(string)

	return &Claims{UserID: int64(id), Username: username}, nil
}
