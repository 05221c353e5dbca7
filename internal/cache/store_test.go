package cache

import (
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrateIdempotent(t *testing.T) {
	s := testStore(t)

	// testStore already ran Migrate; running again must be a no-op.
	result, err := s.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestGetAbsentKey(t *testing.T) {
	s := testStore(t)

	value, err := s.Get("missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != nil {
		t.Errorf("Get(missing) = %q, want nil", value)
	}
}

func TestSetGetRemove(t *testing.T) {
	s := testStore(t)

	if err := s.Set("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, err := s.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(value) != `{"a":1}` {
		t.Errorf("Get(k) = %q, want {\"a\":1}", value)
	}

	// Overwrite replaces the value whole.
	if err := s.Set("k", []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	value, _ = s.Get("k")
	if string(value) != `{"a":2}` {
		t.Errorf("Get(k) after overwrite = %q, want {\"a\":2}", value)
	}

	if err := s.Remove("k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	value, _ = s.Get("k")
	if value != nil {
		t.Errorf("Get(k) after Remove = %q, want nil", value)
	}

	// Removing an absent key is not an error.
	if err := s.Remove("k"); err != nil {
		t.Errorf("Remove(absent) error = %v", err)
	}
}

func TestKeys(t *testing.T) {
	s := testStore(t)

	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys() on empty store = %v, want none", keys)
	}

	for _, k := range []string{"b", "a", "c"} {
		if err := s.Set(k, []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}
	keys, err = s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
