package session

import (
	"os"
	"strings"
)

// ReadToken loads the stored opaque session token for a profile.
// Returns "" when no token is stored; the token file is written by the
// authentication flow, which owns the login lifecycle.
func ReadToken(profile string) (string, error) {
	data, err := os.ReadFile(TokenPath(profile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteToken stores a session token for a profile with restricted permissions.
func WriteToken(profile, token string) error {
	if err := EnsureDir(profile); err != nil {
		return err
	}
	return os.WriteFile(TokenPath(profile), []byte(token+"\n"), 0600)
}

// ClearToken removes the stored token, ending the local session.
func ClearToken(profile string) error {
	err := os.Remove(TokenPath(profile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
