package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/auth"
)

// contextKey 是用于在 context.Context 中存储值的自定义类型，以避免键冲突。
type contextKey string

// ClaimsKey 是用于在上下文中存储 JWT 声明的键。
const ClaimsKey contextKey = "claims"

// TokenCookieName is read when the request carries no Authorization header.
const TokenCookieName = "token"

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*auth.Claims, error)
}

// bearerToken extracts the token from "Authorization: Bearer ..." or the token cookie.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
			return c.Value, nil
		}
		return "", apperrors.Unauthorized("请求未包含授权令牌")
	}
	headerParts := strings.Fields(authHeader)
	if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
		return "", apperrors.Unauthorized("授权头部格式无效，应为 Bearer {token}")
	}
	return headerParts[1], nil
}

// AuthMiddleware 验证 JWT 并将声明放入请求上下文；失败时返回 401。
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeError(w, err)
				return
			}
			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				logger.Debug("rejected token", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims)))
		})
	}
}

// OptionalAuthMiddleware attaches claims when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuthMiddleware(verifier TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, err := bearerToken(r); err == nil {
				if claims, err := verifier.VerifyAccessToken(r.Context(), token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaimsFromContext 从上下文中获取 JWT 声明。
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// GetUserIDFromContext 从上下文中获取用户ID。未认证时返回空字符串和 false。
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := GetClaimsFromContext(ctx)
	if !ok || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatus(apperrors.KindOf(err)))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   string(apperrors.KindOf(err)),
		"message": apperrors.PublicMessage(err),
	})
}
