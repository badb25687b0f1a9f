package users

import (
	"time"

	"github.com/creatorlink/creatorlink/internal/shared"
)

// Account represents a registered marketplace user. PasswordHash holds the
// "<hexHash>.<hexSalt>" string and never leaves the server.
type Account struct {
	ID                  int64
	Username            string
	Email               string
	PasswordHash        string
	Role                shared.Role
	DisplayName         string
	Bio                 string
	AvatarURL           string
	CompletedOnboarding bool
	CreatedAt           time.Time
}

// NewAccount carries the fields required to insert an account.
type NewAccount struct {
	Username     string
	Email        string
	PasswordHash string
	Role         shared.Role
	DisplayName  string
}

// Public strips the password hash.
func (a Account) Public() shared.PublicAccount {
	return shared.PublicAccount{
		ID:                  a.ID,
		Username:            a.Username,
		Email:               a.Email,
		Role:                a.Role,
		DisplayName:         a.DisplayName,
		Bio:                 a.Bio,
		AvatarURL:           a.AvatarURL,
		CompletedOnboarding: a.CompletedOnboarding,
		CreatedAt:           a.CreatedAt,
	}
}
