package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// userIDClaims lists the claims that may carry the user id, in priority order.
var userIDClaims = []string{"userId", "user_id", "id", "sub"}

// UserIDFromToken extracts the user id from a JWT access token without
// verifying its signature. The client never holds the signing key; the
// server verifies the token on every call. Opaque tokens yield "".
func UserIDFromToken(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range userIDClaims {
		v, ok := claims[key]
		if !ok || v == nil {
			continue
		}
		switch id := v.(type) {
		case string:
			if id != "" {
				return id
			}
		case float64:
			return fmt.Sprintf("%.0f", id)
		}
	}
	return ""
}
