package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/homeradio-cashout/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"operator":  c.GetString(ContextOperator),
			"requestId": c.GetString(ContextRequestID),
		})
	})
	return r
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newRouter(RequestIDMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"requestId":"req-42"`)
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := jwt.NewTokenService("mw-secret", time.Hour)
	r := newRouter(JWTAuthMiddleware(tokens, "operator"))

	valid, _, err := tokens.Issue("studio", "operator")
	require.NoError(t, err)
	expired, _, err := jwt.NewTokenService("mw-secret", -time.Minute).Issue("studio", "operator")
	require.NoError(t, err)
	otherRole, _, err := tokens.Issue("studio", "viewer")
	require.NoError(t, err)

	testCases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization header is required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "must start with Bearer"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "Invalid token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token has expired"},
		{"wrong role", "Bearer " + otherRole, http.StatusForbidden, "Insufficient role"},
		{"valid", "Bearer " + valid, http.StatusOK, `"operator":"studio"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"https://studio.example"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://studio.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggerMiddleware_PassesThrough(t *testing.T) {
	r := newRouter(RequestIDMiddleware(), LoggerMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
