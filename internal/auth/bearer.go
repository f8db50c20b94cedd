package auth

import "strings"

// ExtractBearerToken pulls the token out of an Authorization header
// value. The "bearer" prefix is matched case-insensitively, and leading
// whitespace and control characters are trimmed before the match, so a
// client is free to send "Bearer", "bearer", or "BEARER" with incidental
// leading junk. Returns ok=false if the header doesn't carry a bearer
// token at all.
func ExtractBearerToken(header string) (string, bool) {
	trimmed := strings.TrimLeft(header, " \t\r\n\x00\x01\x02\x03\x04\x05\x06\x07")

	const prefix = "bearer "
	if len(trimmed) < len(prefix) {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len(prefix)], prefix) {
		return "", false
	}
	return trimmed[len(prefix):], true
}
