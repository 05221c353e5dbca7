package identity

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// decodeClaims extracts a user id and display name hint from the stored
// session token without verifying its signature. The token came from secure
// local storage and is only an identity hint here; the backend verifies the
// bearer token itself on every request.
func decodeClaims(token string) (id, name string, err error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", "", fmt.Errorf("parse token claims: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}

	for _, key := range []string{"userId", "id", "sub"} {
		if v, ok := claims[key]; ok {
			if s := stringifyClaim(v); s != "" {
				id = s
				break
			}
		}
	}
	for _, key := range []string{"firstName", "name"} {
		if v, ok := claims[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				name = s
				break
			}
		}
	}
	return id, name, nil
}

// stringifyClaim normalizes a claim value that may be a string or a number.
func stringifyClaim(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return json.Number(fmt.Sprintf("%.0f", t)).String()
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
