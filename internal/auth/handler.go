package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/creatorlink/creatorlink/internal/observability"
	"github.com/creatorlink/creatorlink/internal/platform/httpx"
	"github.com/creatorlink/creatorlink/internal/rbac"
	"github.com/creatorlink/creatorlink/internal/shared"
	"github.com/creatorlink/creatorlink/internal/users"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	accounts       *users.Service
	sessionManager *shared.SessionManager
	rbac           rbac.Middleware
	metrics        *observability.Metrics
}

// NewHandler constructs a Handler instance. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, accounts *users.Service, sessions *shared.SessionManager, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		accounts:       accounts,
		sessionManager: sessions,
		rbac:           rbac.Middleware{Logger: logger},
		metrics:        metrics,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/user", h.currentUser)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated())
		r.Post("/user/complete-onboarding", h.completeOnboarding)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.metrics.ObserveAuth("register", outcome(err))
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.startSession(w, r, account); err != nil {
		h.metrics.ObserveAuth("register", "error")
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.metrics.ObserveAuth("register", "success")
	h.logger.Info("account registered", slog.Int64("account_id", account.ID), slog.String("role", string(account.Role)))
	httpx.JSON(w, http.StatusOK, authResponse{Message: "Registration successful", User: account})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.metrics.ObserveAuth("login", outcome(err))
		if errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Info("login rejected", slog.String("username", req.Username))
		}
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.startSession(w, r, account); err != nil {
		h.metrics.ObserveAuth("login", "error")
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.metrics.ObserveAuth("login", "success")
	httpx.JSON(w, http.StatusOK, authResponse{Message: "Login successful", User: account})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if sess.User() != "" {
			if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
				h.logger.Warn("remove session", slog.Any("error", err))
			}
		}
		h.sessionManager.Destroy(sess)
		if err := h.sessionManager.Commit(r.Context(), w, sess); err != nil {
			h.metrics.ObserveAuth("logout", "error")
			httpx.RespondError(w, h.logger, fmt.Errorf("auth: destroy session: %w", err))
			return
		}
	}
	h.metrics.ObserveAuth("logout", "success")
	httpx.Message(w, http.StatusOK, "Logout successful")
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	account, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.Message(w, http.StatusUnauthorized, shared.NotAuthenticatedMessage)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) completeOnboarding(w http.ResponseWriter, r *http.Request) {
	account, _ := shared.AccountFromContext(r.Context())
	updated, err := h.accounts.CompleteOnboarding(r.Context(), account.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{Message: "Onboarding completed", User: updated})
}

// startSession renews the request session, binds it to account and writes
// the cookie before the response body.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, account shared.PublicAccount) error {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return errors.New("auth: session missing from request context")
	}
	h.sessionManager.Renew(sess)
	sess.SetUser(strconv.FormatInt(account.ID, 10))
	if err := h.sessionManager.Commit(r.Context(), w, sess); err != nil {
		return fmt.Errorf("auth: commit session: %w", err)
	}
	if err := h.service.RegisterSession(r.Context(), sess.ID, account.ID, sess.ExpiresAt(), r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		return "invalid"
	case errors.Is(err, shared.ErrValidation):
		return "validation"
	case errors.Is(err, shared.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
