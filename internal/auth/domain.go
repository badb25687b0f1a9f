package auth

import (
	"time"

	"github.com/creatorlink/creatorlink/internal/shared"
)

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3"`
	Password    string `json:"password" validate:"required,min=6"`
	Email       string `json:"email" validate:"required,basicemail"`
	Role        string `json:"role" validate:"required,oneof=creator client"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionRecord is the audit row kept for every authenticated session.
type SessionRecord struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	IP        string
	UserAgent string
}

type authResponse struct {
	Message string               `json:"message"`
	User    shared.PublicAccount `json:"user"`
}
