package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/logging"
	"f3-nation/regionsync/internal/models/dtos/responses"
)

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively and surrounding whitespace ignored.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("bearer "):])
	return token, token != ""
}

// CronSecretMiddleware admits only requests carrying the shared cron secret
// as a bearer token. An empty secret rejects everything.
func CronSecretMiddleware(secret string) func(http.Handler) http.Handler {
	secret = strings.TrimSpace(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r.Header.Get("Authorization"))
			if secret == "" || !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logging.Warn("Rejected trigger request",
					"remote_addr", r.RemoteAddr,
					"has_header", r.Header.Get("Authorization") != "",
				)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     constants.ErrMsgUnauthorized,
	})
}
