package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const debugSubjectHeader = "X-Debug-Subject"

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// NewAuthMiddleware requires "Authorization: Bearer <token>" and puts the
// verified subject in the request context. The scheme is case-insensitive.
func NewAuthMiddleware(v TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, reason := bearerToken(r.Header.Get("Authorization"))
			if reason != "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", reason, nil)
				return
			}

			sub, err := v.Verify(r.Context(), raw)
			if err != nil {
				logger.Debug("Rejected bearer token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), sub)))
		})
	}
}

// bearerToken extracts the token from an Authorization header value.
// A non-empty reason describes why the header was rejected.
func bearerToken(header string) (token string, reason string) {
	if header == "" {
		return "", "missing Authorization header"
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "malformed Authorization header"
	}
	token = strings.TrimSpace(rest)
	if token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}

// NewDevAuthMiddleware trusts X-Debug-Subject, falling back to defaultSubject.
// Local development only.
func NewDevAuthMiddleware(defaultSubject string) func(http.Handler) http.Handler {
	defaultSubject = strings.TrimSpace(defaultSubject)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := strings.TrimSpace(r.Header.Get(debugSubjectHeader))
			if sub == "" {
				sub = defaultSubject
			}
			if sub == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject (set "+debugSubjectHeader+")", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), sub)))
		})
	}
}
