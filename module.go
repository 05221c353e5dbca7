package amora

import (
	"github.com/amora-app/amora-chat/internal/bus"
	"github.com/amora-app/amora-chat/internal/cache"
	"github.com/amora-app/amora-chat/internal/identity"
	"github.com/amora-app/amora-chat/internal/logging"
	"github.com/amora-app/amora-chat/internal/session"
	"github.com/amora-app/amora-chat/internal/transport"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile   string
	BaseURL   string
	CachePath string // optional override for testing; empty = use default
}

// Module returns the fx module for hosts that compose the chat core into a
// larger fx application. It provides the same graph that New wires by hand;
// hosts inject *Core and reach the directory and channels through it, since
// the finer-grained components live under internal/.
func Module(p Params) fx.Option {
	return fx.Module("chatcore",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStore,
			provideTokenSource,
			provideClient,
			provideResolver,
			provideCore,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := session.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	return logging.New(session.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStore(p Params, logger *zap.Logger) (*cache.Store, error) {
	path := p.CachePath
	if path == "" {
		path = session.CacheDBPath(p.Profile)
	}
	store, err := cache.Open(path)
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
	} else {
		logger.Info("cache schema up to date", zap.Uint("version", result.Version))
	}
	return store, nil
}

func provideTokenSource(p Params) transport.TokenSource {
	return transport.TokenFunc(func() (string, error) {
		return session.ReadToken(p.Profile)
	})
}

func provideClient(p Params, tokens transport.TokenSource) *transport.Client {
	opts := []transport.Option{}
	if p.BaseURL != "" {
		opts = append(opts, transport.WithBaseURL(p.BaseURL))
	}
	return transport.NewClient(tokens, opts...)
}

func provideResolver(tokens transport.TokenSource, store *cache.Store, api *transport.Client, logger *zap.Logger) *identity.Resolver {
	profiles := identity.ProfileFunc(func() ([]byte, error) {
		return store.Get(cache.ProfileKey)
	})
	return identity.NewResolver(tokens, profiles, api, logger)
}

func provideCore(logger *zap.Logger, store *cache.Store, b *bus.Bus, api *transport.Client, resolver *identity.Resolver) *Core {
	return &Core{
		logger:   logger,
		store:    store,
		bus:      b,
		api:      api,
		resolver: resolver,
	}
}

func registerLifecycle(lc fx.Lifecycle, store *cache.Store, logger *zap.Logger) {
	lc.Append(fx.StopHook(func() error {
		_ = logger.Sync()
		return store.Close()
	}))
}
