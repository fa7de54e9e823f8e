// Package locale normalizes the language codes users type into the BCP 47
// form stored with translations.
package locale

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/roach88/kantan/internal/store"
)

// ErrInvalidCode is wrapped by every error this package returns.
var ErrInvalidCode = errors.New("invalid language code")

// IsSource reports whether code addresses source-side values.
func IsSource(code string) bool {
	return code == store.SourceLanguage
}

// Canonical returns the canonical BCP 47 form of code, e.g. "de-de" becomes
// "de-DE". The source pseudo-language is returned unchanged.
func Canonical(code string) (string, error) {
	if IsSource(code) {
		return code, nil
	}

	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("locale: %w %q: %w", ErrInvalidCode, code, err)
	}
	if tag == language.Und {
		return "", fmt.Errorf("locale: %w %q: not a specific language", ErrInvalidCode, code)
	}
	return tag.String(), nil
}

// CanonicalTranslation is Canonical for codes that must name a translation
// language, so the source pseudo-language is rejected.
func CanonicalTranslation(code string) (string, error) {
	if IsSource(code) {
		return "", fmt.Errorf("locale: %w %q: not a translation language", ErrInvalidCode, code)
	}
	return Canonical(code)
}

// CanonicalList canonicalizes translation codes and drops duplicates,
// keeping first-seen order.
func CanonicalList(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		c, err := CanonicalTranslation(code)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}
