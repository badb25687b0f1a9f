package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorlink/creatorlink/internal/platform/db"
	"github.com/creatorlink/creatorlink/internal/shared"
)

const (
	uniqueViolation       = "23505"
	usernameUniqueIndex   = "users_username_unique"
	emailUniqueIndex      = "users_email_unique"
	usernameExistsMessage = "Username already exists"
	emailExistsMessage    = "Email already exists"
	accountColumns        = `id, username, email, password, role::text, COALESCE(display_name, ''), COALESCE(bio, ''), COALESCE(avatar_url, ''), completed_onboarding, created_at`
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByUsername looks an account up by exact username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE username = $1 LIMIT 1`, username)
	return scanAccount(row)
}

// FindByID looks an account up by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	return scanAccount(row)
}

// Create inserts a new account. Duplicate usernames or emails yield a
// shared.ErrConflict error.
func (r *Repository) Create(ctx context.Context, in NewAccount) (*Account, error) {
	var created *Account
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, in.Username).Scan(&exists); err != nil {
			return fmt.Errorf("users: check username: %w", err)
		}
		if exists {
			return shared.Conflict(usernameExistsMessage)
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO users (username, password, email, role, display_name, completed_onboarding)
			VALUES ($1, $2, $3, $4::user_role, $5, FALSE)
			RETURNING `+accountColumns,
			in.Username, in.PasswordHash, in.Email, string(in.Role), in.DisplayName)
		account, err := scanAccount(row)
		if err != nil {
			if conflict := conflictFromPg(err); conflict != nil {
				return conflict
			}
			return fmt.Errorf("users: insert: %w", err)
		}
		created = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MarkOnboarded sets completed_onboarding and returns the updated account.
func (r *Repository) MarkOnboarded(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `UPDATE users SET completed_onboarding = TRUE WHERE id = $1 RETURNING `+accountColumns, id)
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		account Account
		role    string
	)
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&role,
		&account.DisplayName,
		&account.Bio,
		&account.AvatarURL,
		&account.CompletedOnboarding,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	account.Role = shared.Role(role)
	return &account, nil
}

// conflictFromPg maps unique-index violations to conflict errors, or nil.
func conflictFromPg(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case emailUniqueIndex:
		return shared.Conflict(emailExistsMessage)
	case usernameUniqueIndex:
		return shared.Conflict(usernameExistsMessage)
	default:
		return shared.Conflict("Account already exists")
	}
}

var _ RepositoryPort = (*Repository)(nil)
