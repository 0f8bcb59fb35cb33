package jwt

import (
	"context"
	"net/http"
	"strings"

	"mikuchat/internal/pkg/logx"
)

type contextKey string

// contextPayloadKey stores the parsed Payload in the request context.
const contextPayloadKey contextKey = "auth_payload"

// BearerToken extracts the bearer token from the Authorization header.
// It returns the empty string when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// IdentityExtractorMiddleware parses the bearer token, if any, and injects
// the resulting Payload into the request context. It never interrupts the
// request: missing or invalid tokens leave the request anonymous and the
// decision to reject is made by the guarded handlers.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(token, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired bearer token, treating request as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), contextPayloadKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPayloadFromContext returns the authenticated Payload for the request, or
// nil when the request is anonymous.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(contextPayloadKey).(*Payload)
	if !ok {
		return nil
	}
	return payload
}
