package auth

import (
	"net/http"
	"strings"
)

// TokenQueryParam carries the credential for websocket clients that cannot set headers.
const TokenQueryParam = "token"

// BearerToken extracts the credential from "Authorization: Bearer <token>",
// falling back to the token query parameter.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return r.URL.Query().Get(TokenQueryParam)
}
