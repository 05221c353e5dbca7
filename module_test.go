package amora

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/fx"
)

func TestModuleProvidesCore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var core *Core
	app := fx.New(
		Module(Params{
			Profile:   "test",
			CachePath: filepath.Join(t.TempDir(), "cache.db"),
		}),
		fx.NopLogger,
		fx.Populate(&core),
	)
	if err := app.Err(); err != nil {
		t.Fatalf("fx graph error = %v", err)
	}
	if core == nil {
		t.Fatal("module did not provide *Core")
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// The injected core serves the library operations; with no stored token
	// identity resolution reports the missing session.
	if _, err := core.ResolveIdentity(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("ResolveIdentity() error = %v, want ErrNoSession", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}
