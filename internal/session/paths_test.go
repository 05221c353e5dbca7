package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := Dir("main")
	want := filepath.Join(home, ".amora", "profiles", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestCacheDBPath(t *testing.T) {
	got := CacheDBPath("test")
	if !strings.HasSuffix(got, filepath.Join("profiles", "test", "cache.db")) {
		t.Errorf("CacheDBPath(test) = %q, want suffix profiles/test/cache.db", got)
	}
}

func TestTokenPath(t *testing.T) {
	got := TokenPath("test")
	if !strings.HasSuffix(got, filepath.Join("profiles", "test", "token")) {
		t.Errorf("TokenPath(test) = %q, want suffix profiles/test/token", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	token, err := ReadToken("test")
	if err != nil {
		t.Fatalf("ReadToken() error = %v", err)
	}
	if token != "" {
		t.Errorf("ReadToken() on empty profile = %q, want empty", token)
	}

	if err := WriteToken("test", "tok-123"); err != nil {
		t.Fatalf("WriteToken() error = %v", err)
	}
	token, err = ReadToken("test")
	if err != nil {
		t.Fatal(err)
	}
	if token != "tok-123" {
		t.Errorf("ReadToken() = %q, want tok-123", token)
	}

	info, err := os.Stat(TokenPath("test"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file permission = %o, want 0600", perm)
	}

	if err := ClearToken("test"); err != nil {
		t.Fatalf("ClearToken() error = %v", err)
	}
	if err := ClearToken("test"); err != nil {
		t.Errorf("second ClearToken() error = %v, want nil", err)
	}
}
