package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthz(t *testing.T) {
	ok := NewOpsRouter(pingFunc(func(context.Context) error { return nil }))
	rr := httptest.NewRecorder()
	ok.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	down := NewOpsRouter(pingFunc(func(context.Context) error { return errors.New("connection refused") }))
	rr = httptest.NewRecorder()
	down.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewOpsRouter(pingFunc(func(context.Context) error { return nil }))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snapshot))
	for _, key := range []string{"total_requests", "imported_rows", "notifications_sent", "operations"} {
		assert.Contains(t, snapshot, key)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
