package chat

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/amora-app/amora-chat/internal/bus"
	"github.com/amora-app/amora-chat/internal/cache"
	"github.com/amora-app/amora-chat/internal/transport"
	"go.uber.org/zap"
)

// Directory builds the conversation list for one resolved identity,
// preferring the backend and falling back to the namespaced local cache when
// it is unreachable.
type Directory struct {
	api     *transport.Client
	store   *cache.Store
	bus     *bus.Bus
	logger  *zap.Logger
	ownerID string
}

// NewDirectory creates a directory for ownerID. Legacy cache keys are
// migrated into the namespaced scheme here, before any read happens.
func NewDirectory(api *transport.Client, store *cache.Store, b *bus.Bus, logger *zap.Logger, ownerID string) *Directory {
	migrated, err := cache.MigrateLegacy(store, ownerID, logger)
	if err != nil {
		logger.Warn("legacy cache migration incomplete", zap.Error(err))
	}
	if migrated {
		logger.Info("legacy cache keys migrated", zap.String("owner", ownerID))
	}
	return &Directory{
		api:     api,
		store:   store,
		bus:     b,
		logger:  logger,
		ownerID: ownerID,
	}
}

// Load returns the user's conversations. A successful backend response is
// authoritative and is persisted for offline use; on any backend failure the
// namespaced cache is read instead. The result is never an error: with no
// backend and no cache the list is simply empty.
func (d *Directory) Load(ctx context.Context) []Conversation {
	wire, err := d.api.Conversations(ctx)
	if err == nil {
		conversations := make([]Conversation, 0, len(wire))
		for _, w := range wire {
			conversations = append(conversations, fromWireConversation(w))
		}
		d.persist(conversations)
		d.bus.Publish(bus.Event{
			Kind:      "directory.refreshed",
			Timestamp: time.Now(),
			Payload:   len(conversations),
		})
		return conversations
	}

	d.logger.Warn("conversation list fetch failed, falling back to cache", zap.Error(err))
	return d.loadCached()
}

func (d *Directory) loadCached() []Conversation {
	raw, err := d.store.Get(cache.ConversationListKey(d.ownerID))
	if err != nil {
		d.logger.Warn("cached conversation list unreadable", zap.Error(err))
		return []Conversation{}
	}
	if raw == nil {
		return []Conversation{}
	}
	var summaries []summary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		d.logger.Warn("cached conversation list undecodable", zap.Error(err))
		return []Conversation{}
	}
	conversations := make([]Conversation, 0, len(summaries))
	for _, s := range summaries {
		conversations = append(conversations, fromSummary(s))
	}
	return conversations
}

// persist writes the conversation summaries sorted by updatedAt descending.
// Persistence is best-effort: the fresh backend result is returned to the
// caller either way.
func (d *Directory) persist(conversations []Conversation) {
	summaries := make([]summary, 0, len(conversations))
	for _, c := range conversations {
		summaries = append(summaries, summaryOf(c))
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	raw, err := json.Marshal(summaries)
	if err != nil {
		d.logger.Warn("conversation list marshal failed", zap.Error(err))
		return
	}
	if err := d.store.Set(cache.ConversationListKey(d.ownerID), raw); err != nil {
		d.logger.Warn("conversation list persist failed", zap.Error(err))
	}
}
