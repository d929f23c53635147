package httpapi

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const (
	subjectKey ctxKey = iota
	languageKey
)

func WithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectKey, subjectID)
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok && v != ""
}

// WithLanguage records the display language requested by the client.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey, lang)
}

func LanguageFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(languageKey).(string)
	return v, ok && v != ""
}

// RequestLanguage stores the language asked for by ?lang= or, failing that,
// the primary subtag of the first Accept-Language entry. Requests naming
// neither keep the server default.
func RequestLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lang := requestedLanguage(r); lang != "" {
			r = r.WithContext(WithLanguage(r.Context(), lang))
		}
		next.ServeHTTP(w, r)
	})
}

func requestedLanguage(r *http.Request) string {
	if l := strings.TrimSpace(r.URL.Query().Get("lang")); l != "" {
		return strings.ToLower(l)
	}
	al := r.Header.Get("Accept-Language")
	if al == "" {
		return ""
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	tag, _, _ = strings.Cut(strings.TrimSpace(tag), "-")
	if tag == "" || tag == "*" {
		return ""
	}
	return strings.ToLower(tag)
}
