package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const tokenContextKey contextKey = "session_token"

// SessionToken copies the session token from the Authorization header into
// the request context. Whether a token is required is up to the handler.
func SessionToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				r = r.WithContext(context.WithValue(r.Context(), tokenContextKey, token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken returns the session token carried by the Authorization
// header. Both a raw token and "Bearer <token>" are accepted.
func ExtractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return header
}

// GetToken returns the session token from the request context
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
