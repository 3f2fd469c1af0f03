package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testSecret = "test-trigger-secret"

func serve(t *testing.T, secret, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/run", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	TriggerAuth(secret)(c)
	return w, c
}

// TestTriggerAuth_Rejects は不正なリクエストが 401 で中断されることを検証します。
func TestTriggerAuth_Rejects(t *testing.T) {
	t.Parallel()

	valid, err := NewGenerator(testSecret, time.Hour).GenerateToken("scheduler")
	require.NoError(t, err)
	wrongSecret, err := NewGenerator("wrong-secret", time.Hour).GenerateToken("scheduler")
	require.NoError(t, err)
	expired, err := NewGenerator(testSecret, -time.Hour).GenerateToken("scheduler")
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "scheduler"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "scheduler",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer " + valid},
		{"malformed token", "Bearer not.a.valid.token"},
		{"wrong secret", "Bearer " + wrongSecret},
		{"expired token", "Bearer " + expired},
		{"missing exp", "Bearer " + noExp},
		{"other hmac algorithm", "Bearer " + hs512},
		{"none algorithm", "Bearer " + none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, c := serve(t, testSecret, tt.authHeader)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

// TestTriggerAuth_MissingSecret はシークレット未設定時に 500 が返されることを検証します。
func TestTriggerAuth_MissingSecret(t *testing.T) {
	t.Parallel()

	w, c := serve(t, "", "Bearer sometoken")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, c.IsAborted())
}

// TestTriggerAuth_ValidToken は有効なトークンで通過し、呼び出し元がコンテキストに設定されることを検証します。
func TestTriggerAuth_ValidToken(t *testing.T) {
	t.Parallel()

	token, err := NewGenerator(testSecret, time.Hour).GenerateToken("cloud-scheduler")
	require.NoError(t, err)

	w, c := serve(t, testSecret, "Bearer "+token)
	require.False(t, c.IsAborted(), "response: %s", w.Body.String())

	caller, ok := c.Get(ContextCaller)
	require.True(t, ok)
	assert.Equal(t, "cloud-scheduler", caller)
}
