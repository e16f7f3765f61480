package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) PingContext(_ context.Context) error {
	return p.err
}

func TestHealth_OK(t *testing.T) {
	h := &HealthHandler{DB: &stubPinger{}}

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	h.Health(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestHealth_NoPinger(t *testing.T) {
	h := &HealthHandler{}

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	h.Health(w, r)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealth_DBDown(t *testing.T) {
	h := &HealthHandler{DB: &stubPinger{err: errors.New("connection refused")}}

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	h.Health(w, r)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth_Head(t *testing.T) {
	h := &HealthHandler{DB: &stubPinger{}}

	r := httptest.NewRequest(http.MethodHead, "/healthz", nil)
	w := httptest.NewRecorder()

	h.Health(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
