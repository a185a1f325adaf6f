package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/feedback-hub/internal/apperr"
	"github.com/hongminglow/feedback-hub/internal/auth"
	"github.com/hongminglow/feedback-hub/internal/http/respond"
)

// TokenParser verifies a bearer token and returns the identity it carries.
type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
//
// Missing header or token answers 401; a token that fails verification
// (signature, algorithm, issuer, expiry) answers 403.
func Authenticate(tokens TokenParser, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				respond.Error(w, apperr.Authentication("missing bearer token"))
				return
			}
			identity, err := tokens.Parse(token)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected bearer token",
					slog.String("path", r.URL.Path),
					slog.Any("error", err))
				respond.Error(w, apperr.InvalidToken("invalid or expired token", err))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
