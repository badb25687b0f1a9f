package rbac

import (
	"log/slog"
	"net/http"

	"github.com/creatorlink/creatorlink/internal/platform/httpx"
	"github.com/creatorlink/creatorlink/internal/shared"
)

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAuthenticated rejects anonymous requests with 401.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return m.RequireRole()
}

// RequireRole ensures the current account holds one of roles. With no roles
// it only requires authentication.
func (m Middleware) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := shared.AccountFromContext(r.Context())
			if err := Authorize(account, ok, roles...); err != nil {
				if m.Logger != nil && ok {
					m.Logger.Warn("role check failed",
						slog.Int64("account_id", account.ID),
						slog.String("role", string(account.Role)),
						slog.String("path", r.URL.Path))
				}
				httpx.RespondError(w, m.Logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
