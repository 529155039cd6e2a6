package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"depositguard/internal/platform/metrics"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/requestcontext"
	"depositguard/pkg/testutil"
)

type resolver struct{ actor id.UserID }

func (r resolver) Actor(token string) (id.UserID, error) {
	if token != "good" {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return r.actor, nil
}

type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(requestcontext.UserID(r.Context()).String()))
	})
}

func newTestRouter(checks map[string]HealthCheck, actor id.UserID) http.Handler {
	return NewRouter(RouterConfig{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:   metrics.New(),
		Auth:      resolver{actor: actor},
		Checks:    checks,
		Protected: []Registrar{whoami{}},
	})
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	actor := id.UserID(uuid.New())
	router := newTestRouter(nil, actor)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/whoami"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := testutil.NewRequest(t, http.MethodGet, "/whoami")
	req.Header.Set("Authorization", "Bearer good")
	rr = testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, actor.String(), rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	router := newTestRouter(map[string]HealthCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	}, id.UserID(uuid.New()))

	assert.Equal(t, http.StatusOK, testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz")).Code)
	assert.Equal(t, http.StatusOK, testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics")).Code)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}
