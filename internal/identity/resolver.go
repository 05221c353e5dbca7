// Package identity resolves the caller's stable user id and display identity
// from the stored session token. The resolved id is the namespacing key for
// every local cache entry, so resolution happens before any chat state is
// read or written.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/amora-app/amora-chat/internal/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSession indicates no stored token exists; the caller should redirect
// to authentication.
var ErrNoSession = errors.New("no active session")

// Identity is the resolved representation of the authenticated user.
type Identity struct {
	ID          string
	DisplayName string
	AvatarURL   string
}

// Placeholder reports whether the id was synthesized locally because neither
// the token claims nor the backend yielded a real one. Placeholder ids are
// stable for the process lifetime only and are never persisted.
func (id *Identity) Placeholder() bool {
	return strings.HasPrefix(id.ID, placeholderPrefix)
}

const placeholderPrefix = "local-"

// ProfileSource supplies the locally cached full profile, if any. The profile
// is written by the account screens, outside this core; the resolver only
// reads it.
type ProfileSource interface {
	Profile() ([]byte, error)
}

// ProfileFunc adapts a function to the ProfileSource interface.
type ProfileFunc func() ([]byte, error)

func (f ProfileFunc) Profile() ([]byte, error) { return f() }

// cachedProfile is the stored shape of the backend's profile response.
type cachedProfile struct {
	ID        transport.FlexID  `json:"_id"`
	FirstName string            `json:"firstName"`
	Photos    []transport.Photo `json:"photos"`
}

// Resolver derives the caller's Identity with a three-tier fallback:
// cached profile, decoded token claims, backend profile fetch.
type Resolver struct {
	tokens   transport.TokenSource
	profiles ProfileSource
	api      *transport.Client
	logger   *zap.Logger

	mu          sync.Mutex
	resolved    *Identity
	placeholder string
}

// NewResolver creates a resolver. profiles may be nil when no local profile
// cache exists.
func NewResolver(tokens transport.TokenSource, profiles ProfileSource, api *transport.Client, logger *zap.Logger) *Resolver {
	return &Resolver{
		tokens:   tokens,
		profiles: profiles,
		api:      api,
		logger:   logger,
	}
}

// Resolve returns the caller's Identity, computing it on first use and
// caching it for the session. It performs no cache writes.
//
// Resolution order, first success wins:
//  1. a cached full profile that includes at least one avatar asset
//  2. the stored token's claims, enriched by a backend profile fetch
//  3. a partial identity (claims only, or a process-lifetime placeholder id)
//
// Returns ErrNoSession when no token is stored at all.
func (r *Resolver) Resolve(ctx context.Context) (*Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != nil {
		return r.resolved, nil
	}

	hintID, hintName := "", ""
	if profile := r.readProfile(); profile != nil {
		if profile.ID != "" && len(profile.Photos) > 0 {
			id := &Identity{
				ID:          profile.ID.String(),
				DisplayName: profile.FirstName,
				AvatarURL:   profile.Photos[0].URL,
			}
			r.resolved = id
			return id, nil
		}
		hintID = profile.ID.String()
		hintName = profile.FirstName
	}

	token, err := r.tokens.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoSession
	}

	if hintID == "" {
		claimID, claimName, err := decodeClaims(token)
		if err != nil {
			// Malformed claims are a hint failure, not a session failure.
			r.logger.Warn("token claims undecodable", zap.Error(err))
		}
		hintID = claimID
		if hintName == "" {
			hintName = claimName
		}
	}

	if hintID != "" {
		user, err := r.api.UserProfile(ctx, hintID)
		if err == nil {
			id := &Identity{
				ID:          user.ID.String(),
				DisplayName: user.FirstName,
				AvatarURL:   user.AvatarURL(),
			}
			r.resolved = id
			return id, nil
		}
		r.logger.Warn("profile fetch failed, using partial identity", zap.Error(err))
		// Partial identities are served but not cached, so a later call can
		// still pick up the enriched profile once the backend is reachable.
		return &Identity{ID: hintID, DisplayName: hintName}, nil
	}

	return &Identity{ID: r.placeholderID(), DisplayName: hintName}, nil
}

func (r *Resolver) readProfile() *cachedProfile {
	if r.profiles == nil {
		return nil
	}
	raw, err := r.profiles.Profile()
	if err != nil || raw == nil {
		return nil
	}
	var profile cachedProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		r.logger.Warn("cached profile undecodable", zap.Error(err))
		return nil
	}
	return &profile
}

// placeholderID returns the process-lifetime synthesized id, creating it on
// first use. It exists purely so the UI can render before resolution
// completes and is never written to the cache.
func (r *Resolver) placeholderID() string {
	if r.placeholder == "" {
		r.placeholder = placeholderPrefix + uuid.NewString()
	}
	return r.placeholder
}
