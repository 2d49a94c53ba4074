package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/flockwatch/internal/logging"
	"github.com/JonMunkholm/flockwatch/internal/service"
)

// AuthSource yields the current shared secret. *store.Store satisfies it.
type AuthSource interface {
	AuthID(ctx context.Context) (string, error)
}

// BearerAuth requires "Authorization: Bearer <auth id>" matching the id held
// by source. A missing or non-bearer header gets 401, a wrong id 403. The id
// is looked up per request so a rotated id takes effect immediately.
func BearerAuth(source AuthSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context())

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.Warn("auth: missing bearer token", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeAuthError(w, http.StatusUnauthorized, service.ErrMissingCredentials)
				return
			}

			expected, err := source.AuthID(r.Context())
			if err != nil {
				logger.Error("auth: lookup failed", "error", err)
				writeAuthError(w, http.StatusInternalServerError, err)
				return
			}

			if !tokensEqual(token, expected) {
				logger.Warn("auth: invalid bearer token", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeAuthError(w, http.StatusForbidden, service.ErrInvalidCredentials)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credentials of a Bearer authorization header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// tokensEqual compares in constant time. An empty expected id never matches.
func tokensEqual(got, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

func writeAuthError(w http.ResponseWriter, status int, err error) {
	msg := service.MapError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
