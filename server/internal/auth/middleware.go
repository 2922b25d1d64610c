package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// Middleware returns an HTTP middleware enforcing bearer-token authentication.
//
// Behaviour:
//   - If mode != "bearer" or token == "", requests are passed to next untouched.
//   - Otherwise the Authorization header must be "Bearer <token>"; the scheme
//     is matched case-insensitively and the token in constant time.
//   - A missing, malformed, or incorrect header yields 401 with a
//     WWW-Authenticate challenge.
func Middleware(mode, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if mode != "bearer" || token == "" {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="ntfy-bridge"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credentials from an Authorization header value.
func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(bearerPrefix):])
	return tok, tok != ""
}
