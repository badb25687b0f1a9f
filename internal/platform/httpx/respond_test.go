package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorlink/creatorlink/internal/shared"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{shared.Validation("Invalid role"), http.StatusBadRequest},
		{shared.Conflict("Username already exists"), http.StatusBadRequest},
		{shared.ErrInvalidCredentials, http.StatusBadRequest},
		{shared.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("wrap: %w", shared.ErrForbidden), http.StatusForbidden},
		{shared.ErrNotFound, http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, StatusFor(tc.err), tc.err.Error())
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, errors.New("pq: relation users does not exist"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rr.Body.String())
}

func TestRespondErrorUsesClientMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, shared.Validation("Username must be at least 3 characters"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"message":"Username must be at least 3 characters"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "alice", target.Name)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	assert.NoError(t, DecodeJSON(req, &target))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.Error(t, DecodeJSON(req, &target))
}
