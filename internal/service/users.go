// Package service provides the business logic of the task manager:
// credentials and sessions for users, and owner-scoped lists and tasks.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/taskmanager/internal/auth"
	"github.com/atinyakov/taskmanager/internal/models"
	"github.com/google/uuid"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// DefaultRefreshTokenTTL is the lifetime of a refresh-token session.
const DefaultRefreshTokenTTL = 10 * 24 * time.Hour

// UserRepository defines the persistence operations on user credentials.
type UserRepository interface {
	// Create inserts a new user; a duplicate email yields models.ErrEmailTaken.
	Create(ctx context.Context, u *models.User) error
	// FindByEmail returns models.ErrNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByIDAndToken returns the user with its sessions only if one of
	// them carries exactly token.
	FindByIDAndToken(ctx context.Context, id, token string) (*models.User, error)
	// Save persists email and password hash.
	Save(ctx context.Context, u *models.User) error
}

// SessionRepository appends refresh-token sessions.
type SessionRepository interface {
	// Append atomically adds a session, evicting the oldest beyond limit when limit > 0.
	Append(ctx context.Context, userID string, s models.Session, limit int) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	AccessToken(userID string) (string, error)
}

// TokenPair is returned after a successful sign-up or login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserConfig tunes session creation.
type UserConfig struct {
	// RefreshTokenTTL is how long a new session stays valid.
	RefreshTokenTTL time.Duration
	// MaxSessions caps sessions per user; 0 keeps all.
	MaxSessions int
}

// UserService implements sign-up, login and the session lifecycle.
type UserService struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenIssuer
	cfg      UserConfig

	now          func() time.Time
	refreshToken func() (string, error)

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService. A zero RefreshTokenTTL means
// DefaultRefreshTokenTTL.
func NewUserService(users UserRepository, sessions SessionRepository, tokens TokenIssuer, cfg UserConfig) *UserService {
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	return &UserService{
		users:        users,
		sessions:     sessions,
		tokens:       tokens,
		cfg:          cfg,
		now:          time.Now,
		refreshToken: auth.NewRefreshToken,
	}
}

// SignUp registers a user and opens its first session.
func (s *UserService) SignUp(ctx context.Context, email, password string) (*models.User, TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, TokenPair{}, &models.ValidationError{Field: "email", Reason: "is required"}
	}
	if len(password) < MinPasswordLength {
		return nil, TokenPair{}, &models.ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
		}
	}

	u := &models.User{ID: uuid.NewString(), Email: email}
	u.SetPassword(password)
	if err := s.hashPending(u); err != nil {
		return nil, TokenPair{}, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Login checks credentials and opens a new session. An unknown email and a
// wrong password both yield models.ErrUnauthorized after one bcrypt compare.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, TokenPair{}, &models.ValidationError{Field: "credentials", Reason: "email and password are required"}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		auth.CheckPassword(s.dummy(), password)
		return nil, TokenPair{}, models.ErrUnauthorized
	}
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, models.ErrUnauthorized
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Save persists u, hashing a password set through SetPassword first.
// Saving again without a new password keeps the stored hash.
func (s *UserService) Save(ctx context.Context, u *models.User) error {
	if err := s.hashPending(u); err != nil {
		return err
	}
	return s.users.Save(ctx, u)
}

// CreateSession stores a fresh refresh token for u, valid for the configured
// TTL, and returns it. The session is also appended to u.Sessions.
func (s *UserService) CreateSession(ctx context.Context, u *models.User) (string, error) {
	token, err := s.refreshToken()
	if err != nil {
		return "", err
	}

	session := models.Session{
		Token:     token,
		ExpiresAt: s.now().Add(s.cfg.RefreshTokenTTL).Unix(),
	}
	if err := s.sessions.Append(ctx, u.ID, session, s.cfg.MaxSessions); err != nil {
		return "", err
	}
	u.Sessions = append(u.Sessions, session)
	return token, nil
}

// IsSessionValid reports whether u holds token and it has not expired.
func (s *UserService) IsSessionValid(u *models.User, token string) bool {
	return u.HasValidSession(token, s.now())
}

// FindByIDAndToken returns the user owning the given session token.
func (s *UserService) FindByIDAndToken(ctx context.Context, id, token string) (*models.User, error) {
	return s.users.FindByIDAndToken(ctx, id, token)
}

// AccessToken mints a new access token for userID.
func (s *UserService) AccessToken(userID string) (string, error) {
	token, err := s.tokens.AccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

func (s *UserService) issue(ctx context.Context, u *models.User) (TokenPair, error) {
	refresh, err := s.CreateSession(ctx, u)
	if err != nil {
		return TokenPair{}, fmt.Errorf("create session: %w", err)
	}
	access, err := s.AccessToken(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) hashPending(u *models.User) error {
	plain, ok := u.TakePassword()
	if !ok {
		return nil
	}
	hash, err := auth.HashPassword(plain)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword(uuid.NewString())
	})
	return s.dummyHash
}
