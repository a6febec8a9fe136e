// Package langcode validates and canonicalizes BCP 47 language codes used as
// catalog table identifiers.
package langcode

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto is the sentinel meaning "resolve the source language from the
// collection's declared table order". An empty code means the same thing.
const Auto = "auto"

// IsAuto reports whether code requests automatic source resolution.
func IsAuto(code string) bool {
	trimmed := strings.TrimSpace(code)
	return trimmed == "" || strings.EqualFold(trimmed, Auto)
}

// Canonical parses code as BCP 47 and returns its canonical form
// (e.g. "PT-br" -> "pt-BR").
func Canonical(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", fmt.Errorf("language code is empty")
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// DisplayName returns the English name of a language code, or the code itself
// when it cannot be parsed.
func DisplayName(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// Equal reports whether two codes identify the same language after
// canonicalization. Codes that fail to parse compare byte-wise.
func Equal(a, b string) bool {
	ca, errA := Canonical(a)
	cb, errB := Canonical(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	return ca == cb
}
