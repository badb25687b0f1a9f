package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/creatorlink/creatorlink/internal/shared"
	"github.com/creatorlink/creatorlink/internal/users"
)

// Service wraps registration and credential checks.
type Service struct {
	accounts  users.RepositoryPort
	sessions  Repository
	validator *validator.Validate
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewService constructs a new Service. sessions may be nil, in which case no
// audit trail is kept.
func NewService(accounts users.RepositoryPort, sessions Repository) *Service {
	return &Service{
		accounts:  accounts,
		sessions:  sessions,
		validator: newValidator(),
		now:       time.Now,
	}
}

// Register validates req, stores a new account and returns its public view.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (shared.PublicAccount, error) {
	if err := validateRegister(s.validator, req); err != nil {
		return shared.PublicAccount{}, err
	}

	if _, err := s.accounts.FindByUsername(ctx, req.Username); err == nil {
		return shared.PublicAccount{}, shared.Conflict("Username already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return shared.PublicAccount{}, fmt.Errorf("auth: lookup username: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return shared.PublicAccount{}, err
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}
	account, err := s.accounts.Create(ctx, users.NewAccount{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         shared.Role(req.Role),
		DisplayName:  displayName,
	})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return shared.PublicAccount{}, err
		}
		return shared.PublicAccount{}, fmt.Errorf("auth: create account: %w", err)
	}
	return account.Public(), nil
}

// Login validates req and checks the credentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (shared.PublicAccount, error) {
	if err := validateLogin(s.validator, req); err != nil {
		return shared.PublicAccount{}, err
	}
	return s.Authenticate(ctx, req.Username, req.Password)
}

// Authenticate validates username/password credentials. Unknown usernames and
// wrong passwords both yield shared.ErrInvalidCredentials after a full KDF run.
func (s *Service) Authenticate(ctx context.Context, username, password string) (shared.PublicAccount, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			VerifyPassword(password, s.placeholderHash())
			return shared.PublicAccount{}, shared.ErrInvalidCredentials
		}
		return shared.PublicAccount{}, fmt.Errorf("auth: lookup account: %w", err)
	}
	if !VerifyPassword(password, account.PasswordHash) {
		return shared.PublicAccount{}, shared.ErrInvalidCredentials
	}
	return account.Public(), nil
}

// RegisterSession records the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.CreateSession(ctx, SessionRecord{
		ID:        id,
		UserID:    userID,
		CreatedAt: s.now(),
		ExpiresAt: expiresAt,
		IP:        ip,
		UserAgent: ua,
	})
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.DeleteSession(ctx, id)
}

// PruneSessions deletes audit records whose session has expired.
func (s *Service) PruneSessions(ctx context.Context) (int64, error) {
	if s.sessions == nil {
		return 0, nil
	}
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

// placeholderHash is verified against when the username is unknown so that
// both failure paths cost one KDF run.
func (s *Service) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := HashPassword("placeholder-password")
		if err != nil {
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
