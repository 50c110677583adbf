package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okCheck(context.Context) error { return nil }

func TestHealthz_OK(t *testing.T) {
	s := New(":0", map[string]CheckFunc{"database": okCheck, "tracker": okCheck}, discardLogger())

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"].Status)
	assert.Equal(t, "ok", resp.Checks["tracker"].Status)
}

func TestHealthz_Fail(t *testing.T) {
	down := func(context.Context) error { return errors.New("redis tidak terjangkau") }
	s := New(":0", map[string]CheckFunc{"database": okCheck, "tracker": down}, discardLogger())

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fail", resp.Status)
	assert.Equal(t, "redis tidak terjangkau", resp.Checks["tracker"].Message)
}

func TestMetrics(t *testing.T) {
	s := New(":0", nil, discardLogger())

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStartShutdown(t *testing.T) {
	s := New("127.0.0.1:0", nil, discardLogger())
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}
