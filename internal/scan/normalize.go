package scan

import "strings"

// Normalize converts a raw scanned payload into a canonical matching key.
// Structured payloads ("CODE|NAME|PRICE") contribute only their first
// segment; everything else is used whole. The result is trimmed and
// lower-cased. An empty result means no match should be attempted.
func Normalize(raw string) string {
	code := raw
	if idx := strings.IndexByte(raw, '|'); idx >= 0 {
		code = raw[:idx]
	}
	return strings.ToLower(strings.TrimSpace(code))
}
