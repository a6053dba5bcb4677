package session

import "strings"

const unitToken = "lokal"

// NormalizeUnitID turns "Lokal 46/2" into "46.2". Any result, even empty, is valid.
// The token is removed until none is left so that the transform is idempotent
// ("lolokalkal" would otherwise leave a fresh "lokal" behind).
func NormalizeUnitID(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	for strings.Contains(s, unitToken) {
		s = strings.ReplaceAll(s, unitToken, "")
	}
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, "/", ".")
}
