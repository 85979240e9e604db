package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/auth"
)

type stubVerifier map[string]string

func (s stubVerifier) VerifyAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	if id, ok := s[token]; ok {
		return &auth.Claims{UserID: id}, nil
	}
	return nil, apperrors.Unauthorized("Invalid or expired token")
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := GetUserIDFromContext(r.Context())
		_, _ = w.Write([]byte(id))
	})
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(stubVerifier{"good": "user-1"}, zap.NewNop())(echoUser())

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"malformed", func(r *http.Request) { r.Header.Set("Authorization", "Token good") }, http.StatusUnauthorized, ""},
		{"invalid", func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }, http.StatusUnauthorized, ""},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "good"}) }, http.StatusOK, "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rr.Body.String())
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body["error"])
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	h := OptionalAuthMiddleware(stubVerifier{"good": "user-1"})(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())

	req.Header.Set("Authorization", "Bearer good")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "user-1", rr.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, rr.Body.String(), "boom")
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	h := RequestLogger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/posts", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
}
