package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorlink/creatorlink/internal/shared"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("store offline")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store offline")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("store offline")
}

type resolverFunc func(ctx context.Context, id int64) (shared.PublicAccount, error)

func (f resolverFunc) Resolve(ctx context.Context, id int64) (shared.PublicAccount, error) {
	return f(ctx, id)
}

func newStackRouter(cfg MiddlewareConfig, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(cfg) {
		r.Use(mw)
	}
	r.Get("/", h)
	return r
}

func TestSessionStoreFailureIsInternalError(t *testing.T) {
	sessions := shared.NewSessionManager(failingStore{}, "sid", "secret", time.Hour, false)
	called := false
	router := newStackRouter(MiddlewareConfig{SessionManager: sessions}, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: shared.NewCookieSigner("secret").Sign("abc")})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, res.Body.String())
}

func TestIdentityResolvedIntoContext(t *testing.T) {
	store := shared.NewMemoryStore(time.Hour)
	sessions := shared.NewSessionManager(store, "sid", "secret", time.Hour, false)
	ctx := context.Background()

	sess, err := sessions.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sessions.Renew(sess)
	sess.SetUser("5")
	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Commit(ctx, rec, sess))
	cookie := rec.Result().Cookies()[0]

	resolver := resolverFunc(func(_ context.Context, id int64) (shared.PublicAccount, error) {
		return shared.PublicAccount{ID: id, Username: "erin", Role: shared.RoleClient}, nil
	})
	var got shared.PublicAccount
	var ok bool
	router := newStackRouter(MiddlewareConfig{SessionManager: sessions, Identity: resolver}, func(w http.ResponseWriter, r *http.Request) {
		got, ok = shared.AccountFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.True(t, ok)
	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, "erin", got.Username)
	assert.Empty(t, res.Result().Cookies(), "unchanged session must not rewrite the cookie")
}

func TestResolverFailureIsInternalError(t *testing.T) {
	store := shared.NewMemoryStore(time.Hour)
	sessions := shared.NewSessionManager(store, "sid", "secret", time.Hour, false)
	ctx := context.Background()
	sess, _ := sessions.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	sessions.Renew(sess)
	sess.SetUser("5")
	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Commit(ctx, rec, sess))

	resolver := resolverFunc(func(context.Context, int64) (shared.PublicAccount, error) {
		return shared.PublicAccount{}, errors.New("db down")
	})
	router := newStackRouter(MiddlewareConfig{SessionManager: sessions, Identity: resolver}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusInternalServerError, res.Code)
}

func TestSecurityHeadersAndRateLimit(t *testing.T) {
	sessions := shared.NewSessionManager(shared.NewMemoryStore(time.Hour), "sid", "secret", time.Hour, false)
	cfg := &Config{RateLimitPerMinute: 2}
	router := newStackRouter(MiddlewareConfig{Config: cfg, SessionManager: sessions}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var codes []int
	for i := 0; i < 3; i++ {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, res.Code)
		if i == 0 {
			assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
