package auth

import (
	"net/http"
	"strings"
)

const (
	bearerScheme = "Bearer"
	bearerPrefix = bearerScheme + " "
)

// ExtractBearerToken returns the token carried by the request's Authorization header,
// or an empty string when the header is missing or not a bearer credential.
func ExtractBearerToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	return ExtractBearerTokenFromHeader(r.Header.Get("Authorization"))
}

// ExtractBearerTokenFromHeader accepts the scheme in any letter case.
//
// Example:
//
//	token := ExtractBearerTokenFromHeader("Bearer eyJhbGciOiJIUzI1NiIs...")
func ExtractBearerTokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return ""
	}
	rest := header[len(bearerScheme):]
	if rest != "" && rest[0] != ' ' {
		return ""
	}
	return strings.TrimSpace(rest)
}

// BearerHeader renders the Authorization header value for token. An empty token still
// produces the prefix; net/http trims the trailing space, so the wire value is "Bearer".
func BearerHeader(token string) string {
	return bearerPrefix + strings.TrimSpace(token)
}
