package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pricehandler "stock_ingest/internal/feature/prices/transport/handler"
	"stock_ingest/internal/feature/prices/usecase"
	jwtmw "stock_ingest/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubRunner struct{}

func (stubRunner) Run(context.Context, []string) (usecase.Report, error) {
	return usecase.Report{RunID: "run"}, nil
}

func TestNewRouter(t *testing.T) {
	t.Parallel()

	const secret = "router-secret"
	token, err := jwtmw.NewGenerator(secret, time.Hour).GenerateToken("scheduler")
	require.NoError(t, err)

	tests := []struct {
		name           string
		secret         string
		method         string
		path           string
		authHeader     string
		expectedStatus int
	}{
		{name: "healthz", secret: secret, method: http.MethodGet, path: "/healthz", expectedStatus: http.StatusOK},
		{name: "run open without secret", method: http.MethodPost, path: "/run", expectedStatus: http.StatusOK},
		{name: "run requires token", secret: secret, method: http.MethodPost, path: "/run", expectedStatus: http.StatusUnauthorized},
		{name: "run with token", secret: secret, method: http.MethodPost, path: "/run", authHeader: "Bearer " + token, expectedStatus: http.StatusOK},
		{name: "run is post only", method: http.MethodGet, path: "/run", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trigger := pricehandler.NewTriggerHandler(stubRunner{}, []string{"2330"}, 0)
			r := NewRouter(trigger, tt.secret, nil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
