package shared

import (
	"context"
	"time"
)

// Role is the marketplace side an account belongs to.
type Role string

const (
	RoleCreator Role = "creator"
	RoleClient  Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCreator || r == RoleClient
}

// PublicAccount is the subset of account fields safe to return to clients.
type PublicAccount struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	Role                Role      `json:"role"`
	DisplayName         string    `json:"displayName,omitempty"`
	Bio                 string    `json:"bio,omitempty"`
	AvatarURL           string    `json:"avatarUrl,omitempty"`
	CompletedOnboarding bool      `json:"completedOnboarding"`
	CreatedAt           time.Time `json:"createdAt"`
}

type sessionContextKey struct{}

type accountContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithAccount stores the resolved account in context.
func ContextWithAccount(ctx context.Context, account PublicAccount) context.Context {
	return context.WithValue(ctx, accountContextKey{}, account)
}

// AccountFromContext returns the authenticated account, or false when the
// request is anonymous.
func AccountFromContext(ctx context.Context) (PublicAccount, bool) {
	account, ok := ctx.Value(accountContextKey{}).(PublicAccount)
	return account, ok
}
