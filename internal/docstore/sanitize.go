package docstore

import "strings"

// Sanitize maps an arbitrary caller-supplied library name to a token that is
// safe to use as a single filename component. Every rune outside
// [A-Za-z0-9._-] becomes an underscore, then any remaining ".." sequence is
// collapsed to an underscore so the result can never climb out of the cache
// directory.
//
// The mapping is deterministic but not injective: "a/b" and "a_b" yield the
// same key. Callers that care about distinct entries must pick names that
// survive sanitization distinctly.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.ReplaceAll(b.String(), "..", "_")
}
