// Package amora is the chat synchronization core: identity resolution from
// the stored session token, an identity-namespaced on-device cache, the
// conversation directory, and per-conversation message channels with
// optimistic send and reconcile. It is a library driven by UI event
// handlers; it has no process entry point of its own.
package amora

import (
	"context"
	"fmt"
	"time"

	"github.com/amora-app/amora-chat/internal/bus"
	"github.com/amora-app/amora-chat/internal/cache"
	"github.com/amora-app/amora-chat/internal/chat"
	"github.com/amora-app/amora-chat/internal/config"
	"github.com/amora-app/amora-chat/internal/identity"
	"github.com/amora-app/amora-chat/internal/logging"
	"github.com/amora-app/amora-chat/internal/session"
	"github.com/amora-app/amora-chat/internal/transport"
	"go.uber.org/zap"
)

// Re-exported core types so callers outside the module can name them.
type (
	Identity     = identity.Identity
	Directory    = chat.Directory
	Channel      = chat.Channel
	Message      = chat.Message
	Conversation = chat.Conversation
	MediaAsset   = chat.MediaAsset
	Status       = chat.Status
	Event        = bus.Event
)

const (
	StatusPending = chat.StatusPending
	StatusSent    = chat.StatusSent
	StatusFailed  = chat.StatusFailed
)

// ErrNoSession is returned when no session token is stored; the caller
// should redirect to authentication.
var ErrNoSession = identity.ErrNoSession

// Config controls core construction. Zero values fall back to the global
// config file and built-in defaults.
type Config struct {
	// Profile selects the local profile directory. Defaults to the config
	// file's default_profile, then "main".
	Profile string
	// BaseURL overrides the backend base URL.
	BaseURL string
	// Timeout overrides the per-request timeout.
	Timeout time.Duration
	// CachePath overrides the cache database location (used by tests).
	CachePath string
	// Logger replaces the default file+stderr logger.
	Logger *zap.Logger
}

// Core owns the wired component graph for one profile.
type Core struct {
	logger   *zap.Logger
	store    *cache.Store
	bus      *bus.Bus
	api      *transport.Client
	resolver *identity.Resolver
}

// New wires a core for the given configuration.
func New(cfg Config) (*Core, error) {
	fileCfg, _ := config.Load(session.ConfigPath())

	profile := cfg.Profile
	if profile == "" && fileCfg != nil {
		profile = fileCfg.DefaultProfile
	}
	if profile == "" {
		profile = "main"
	}
	if err := session.ValidateName(profile); err != nil {
		return nil, err
	}
	if err := session.EnsureDir(profile); err != nil {
		return nil, fmt.Errorf("profile dir: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		var err error
		logger, err = logging.New(session.LogPath(profile), profile)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
	}

	cachePath := cfg.CachePath
	if cachePath == "" {
		cachePath = session.CacheDBPath(profile)
	}
	store, err := cache.Open(cachePath)
	if err != nil {
		return nil, err
	}
	result, err := store.Migrate()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("cache schema migrated", zap.Uint("version", result.Version))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fileCfg.BaseURL()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = fileCfg.RequestTimeout()
	}

	tokens := transport.TokenFunc(func() (string, error) {
		return session.ReadToken(profile)
	})
	api := transport.NewClient(tokens,
		transport.WithBaseURL(baseURL),
		transport.WithTimeout(timeout),
	)
	profiles := identity.ProfileFunc(func() ([]byte, error) {
		return store.Get(cache.ProfileKey)
	})

	return &Core{
		logger:   logger,
		store:    store,
		bus:      bus.New(),
		api:      api,
		resolver: identity.NewResolver(tokens, profiles, api, logger),
	}, nil
}

// Close releases the cache database.
func (c *Core) Close() error {
	_ = c.logger.Sync()
	return c.store.Close()
}

// ResolveIdentity returns the caller's identity, or ErrNoSession when no
// token is stored.
func (c *Core) ResolveIdentity(ctx context.Context) (*Identity, error) {
	return c.resolver.Resolve(ctx)
}

// Directory opens the conversation directory for the resolved identity.
// Legacy cache keys are migrated before the first read.
func (c *Core) Directory(ctx context.Context) (*Directory, error) {
	id, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return chat.NewDirectory(c.api, c.store, c.bus, c.logger, id.ID), nil
}

// Channel opens the message channel with a counterpart.
func (c *Core) Channel(ctx context.Context, counterpartID string) (*Channel, error) {
	id, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return chat.NewChannel(c.api, c.store, c.bus, c.logger, id, counterpartID), nil
}

// Subscribe returns a channel of core events whose kind starts with prefix
// (for example "message." or "directory."), plus an unsubscribe function.
func (c *Core) Subscribe(prefix string, bufSize int) (<-chan Event, func()) {
	return c.bus.Subscribe(prefix, bufSize)
}
