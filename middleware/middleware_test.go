package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-dashboard/logger"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func protected() *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet(UserIDKey).(uint)})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	valid, err := IssueToken(secret, 42, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, 42, -time.Hour)
	require.NoError(t, err)
	otherKey, err := IssueToken("another-secret", 42, time.Hour)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 42}).SignedString([]byte(secret))
	require.NoError(t, err)

	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: `{"user_id":42}`},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "no bearer prefix", header: valid, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + otherKey, wantStatus: http.StatusUnauthorized},
		{name: "no exp claim", header: "Bearer " + noExp, wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			protected().ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog(logger.NewNop()))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestID(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	minted := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, minted)
	assert.Equal(t, minted, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc", w.Body.String())
}
