package domain

import (
	"sort"
	"strings"
)

// DefaultLanguage is tried when the requested language has no text.
const DefaultLanguage = "en"

// LocalizedText maps a language code (e.g. "en", "ru", "hi") to text.
type LocalizedText map[string]string

// Clone returns an independent copy.
func (t LocalizedText) Clone() LocalizedText {
	if t == nil {
		return nil
	}
	out := make(LocalizedText, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Localize resolves t for lang. It never fails: it falls back to DefaultLanguage,
// then to the first non-empty language in lexical order, then to "".
func Localize(t LocalizedText, lang string) string {
	if len(t) == 0 {
		return ""
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if v := strings.TrimSpace(t[lang]); v != "" {
		return v
	}
	if v := strings.TrimSpace(t[DefaultLanguage]); v != "" {
		return v
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(t[k]); v != "" {
			return v
		}
	}
	return ""
}

// Matches reports whether any language variant contains query, case-insensitively.
func (t LocalizedText) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	for _, v := range t {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}
