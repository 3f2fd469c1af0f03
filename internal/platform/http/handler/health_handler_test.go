package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(checks map[string]Check) *gin.Engine {
	r := gin.New()
	h := Health(checks)
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	r.OPTIONS("/healthz", h)
	return r
}

func TestHealth_ResponseStatus(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		method         string
		checks         map[string]Check
		expectedStatus int
		expectedBody   string
	}{
		{name: "get without checks", method: http.MethodGet, expectedStatus: http.StatusOK, expectedBody: "ok"},
		{name: "get healthy", method: http.MethodGet, checks: map[string]Check{"warehouse": ok}, expectedStatus: http.StatusOK, expectedBody: "ok"},
		{name: "nil check ignored", method: http.MethodGet, checks: map[string]Check{"redis": nil}, expectedStatus: http.StatusOK, expectedBody: "ok"},
		{name: "get unhealthy", method: http.MethodGet, checks: map[string]Check{"warehouse": ok, "redis": down}, expectedStatus: http.StatusServiceUnavailable, expectedBody: "unavailable"},
		{name: "head healthy", method: http.MethodHead, checks: map[string]Check{"warehouse": ok}, expectedStatus: http.StatusOK},
		{name: "head unhealthy", method: http.MethodHead, checks: map[string]Check{"warehouse": down}, expectedStatus: http.StatusServiceUnavailable},
		{name: "options skips checks", method: http.MethodOptions, checks: map[string]Check{"warehouse": down}, expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/healthz", nil)
			setupRouter(tt.checks).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

			if tt.expectedBody == "" {
				assert.Zero(t, w.Body.Len())
				return
			}
			var response map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedBody, response["status"])
		})
	}
}

func TestHealth_ReportsFailedChecks(t *testing.T) {
	t.Parallel()

	checks := map[string]Check{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}

	w := httptest.NewRecorder()
	setupRouter(checks).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var response struct {
		Status string            `json:"status"`
		Failed map[string]string `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "connection refused", response.Failed["redis"])
}
