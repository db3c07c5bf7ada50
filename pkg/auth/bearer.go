package auth

import "strings"

const bearerScheme = "bearer"

// ExtractBearerToken pulls the token out of an Authorization header value using a
// case-insensitive "Bearer <token>" scheme.
func ExtractBearerToken(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], bearerScheme) {
		return "", false
	}
	return fields[1], true
}
