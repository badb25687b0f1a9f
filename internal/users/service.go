package users

import (
	"context"
	"fmt"

	"github.com/creatorlink/creatorlink/internal/shared"
)

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	Create(ctx context.Context, in NewAccount) (*Account, error)
	MarkOnboarded(ctx context.Context, id int64) (*Account, error)
}

// Service exposes account reads and self-service updates.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Resolve returns the public view of the account with id. A missing account
// yields shared.ErrNotFound.
func (s *Service) Resolve(ctx context.Context, id int64) (shared.PublicAccount, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return shared.PublicAccount{}, err
	}
	return account.Public(), nil
}

// CompleteOnboarding flags the account as onboarded.
func (s *Service) CompleteOnboarding(ctx context.Context, id int64) (shared.PublicAccount, error) {
	account, err := s.repo.MarkOnboarded(ctx, id)
	if err != nil {
		return shared.PublicAccount{}, fmt.Errorf("users: complete onboarding: %w", err)
	}
	return account.Public(), nil
}
