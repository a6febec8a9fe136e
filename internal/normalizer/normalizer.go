// Package normalizer cleans over-escaped characters that translation models
// occasionally introduce, comparing against the source string so that escape
// sequences the author wrote on purpose survive untouched.
package normalizer

import "strings"

type mapping struct {
	escaped   string
	unescaped string
}

// Mappings run in this fixed order: apostrophe, quote, backslash, newline,
// tab, carriage return. Each mapping sees the output of the previous one, so
// the order only matters for pathological inputs with nested escape
// artifacts; it must stay stable so runs are reproducible.
var mappings = []mapping{
	{`\'`, `'`},
	{`\"`, `"`},
	{`\\`, `\`},
	{`\n`, "\n"},
	{`\t`, "\t"},
	{`\r`, "\r"},
}

// Normalize removes escape sequences from translated that do not appear in
// source. If disabled or either input is empty, translated is returned
// unchanged. Pure function, safe to call concurrently.
func Normalize(source, translated string, enabled bool) string {
	if !enabled || source == "" || translated == "" {
		return translated
	}
	for _, m := range mappings {
		if !strings.Contains(translated, m.escaped) {
			continue
		}
		if strings.Contains(source, m.escaped) {
			// The same escape exists in the source: intentional, keep it.
			continue
		}
		translated = strings.ReplaceAll(translated, m.escaped, m.unescaped)
	}
	return translated
}
