package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amora-app/amora-chat/internal/bus"
	"github.com/amora-app/amora-chat/internal/cache"
	"github.com/amora-app/amora-chat/internal/identity"
	"github.com/amora-app/amora-chat/internal/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// likeSticker is the fixed payload of the "like" quick reaction. It travels
// through the ordinary text send path.
const likeSticker = "❤️"

// Channel is the message history and send pipeline for one conversation.
// Messages are held oldest-first internally; Messages and LoadHistory expose
// them newest-first for display. A Channel belongs to a single screen
// instance and is not safe for concurrent use.
type Channel struct {
	api    *transport.Client
	store  *cache.Store
	bus    *bus.Bus
	logger *zap.Logger

	owner         *identity.Identity
	counterpartID string

	// conversationID is empty until the backend creates the conversation on
	// first send or a history load discovers it.
	conversationID string
	messages       []Message
}

// NewChannel opens a channel between the resolved owner and a counterpart.
func NewChannel(api *transport.Client, store *cache.Store, b *bus.Bus, logger *zap.Logger, owner *identity.Identity, counterpartID string) *Channel {
	return &Channel{
		api:           api,
		store:         store,
		bus:           b,
		logger:        logger,
		owner:         owner,
		counterpartID: counterpartID,
	}
}

// ConversationID returns the backend-issued conversation id, or "" while the
// conversation has not been established.
func (c *Channel) ConversationID() string {
	return c.conversationID
}

// Messages returns the current history newest-first for display.
func (c *Channel) Messages() []Message {
	display := make([]Message, len(c.messages))
	for i, m := range c.messages {
		display[len(c.messages)-1-i] = m
	}
	return display
}

// LoadHistory loads the conversation's messages, newest-first. The backend's
// canonical record wins when reachable; otherwise the namespaced cache is
// read. An unstarted conversation yields an empty list, never an error.
func (c *Channel) LoadHistory(ctx context.Context) []Message {
	if c.loadBackend(ctx) {
		c.persist()
		return c.Messages()
	}
	c.loadCached()
	return c.Messages()
}

// loadBackend finds the conversation for the counterpart and fetches its
// history. Returns false on any failure or when the backend has no
// conversation yet, in which case the cache may still hold optimistic sends.
func (c *Channel) loadBackend(ctx context.Context) bool {
	conversations, err := c.api.Conversations(ctx)
	if err != nil {
		c.logger.Warn("conversation lookup failed, falling back to cache", zap.Error(err))
		return false
	}
	for _, conv := range conversations {
		if conv.OtherUser.ID.String() != c.counterpartID {
			continue
		}
		conversationID := conv.ID.String()
		wire, err := c.api.Messages(ctx, conversationID)
		if err != nil {
			c.logger.Warn("history fetch failed, falling back to cache", zap.Error(err))
			return false
		}
		c.conversationID = conversationID
		// The backend returns chronological order, which is the internal
		// storage order; display reversal happens in Messages.
		c.messages = make([]Message, 0, len(wire))
		for _, w := range wire {
			m := fromWireMessage(w)
			m.ConversationID = conversationID
			c.messages = append(c.messages, m)
		}
		return true
	}
	return false
}

func (c *Channel) loadCached() {
	raw, err := c.store.Get(cache.MessageHistoryKey(c.owner.ID, c.counterpartID))
	if err != nil {
		c.logger.Warn("cached history unreadable", zap.Error(err))
		c.messages = nil
		return
	}
	if raw == nil {
		c.messages = nil
		return
	}
	var messages []Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		c.logger.Warn("cached history undecodable", zap.Error(err))
		c.messages = nil
		return
	}
	c.messages = messages
	// A cached history may know the conversation id from an earlier session.
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].ConversationID != "" {
			c.conversationID = messages[i].ConversationID
			break
		}
	}
}

// Send delivers a text message with an optimistic local insert: the message
// is visible and persisted before any network traffic, then replaced in
// place by the backend's canonical record on acknowledgement. On failure the
// provisional message stays visible with StatusFailed; there is no automatic
// retry. The returned message is the user-visible state after the attempt.
func (c *Channel) Send(ctx context.Context, text string) *Message {
	return c.send(ctx, text)
}

// SendLike sends the fixed "like" sticker.
func (c *Channel) SendLike(ctx context.Context) *Message {
	return c.send(ctx, likeSticker)
}

func (c *Channel) send(ctx context.Context, text string) *Message {
	provisional := c.insertProvisional(text, "")

	sent, err := c.api.SendMessage(ctx, transport.SendMessageRequest{
		Content:        text,
		Type:           "text",
		RecipientID:    c.counterpartID,
		ConversationID: c.conversationID,
	})
	if err != nil {
		return c.markFailed(provisional.ID, err)
	}
	return c.reconcile(provisional.ID, sent)
}

// SendMedia delivers a media attachment. The optimistic message shows the
// local asset reference until reconciliation swaps in the backend-hosted URL.
func (c *Channel) SendMedia(ctx context.Context, asset MediaAsset) *Message {
	provisional := c.insertProvisional("", asset.LocalRef)

	sent, err := c.api.SendMedia(ctx, transport.SendMediaRequest{
		FileName:       asset.FileName,
		ContentType:    asset.ContentType,
		Data:           asset.Data,
		RecipientID:    c.counterpartID,
		ConversationID: c.conversationID,
	})
	if err != nil {
		return c.markFailed(provisional.ID, err)
	}
	return c.reconcile(provisional.ID, sent)
}

// insertProvisional appends an optimistic message and persists the list
// before any network call, so the message survives a crash or offline gap.
func (c *Channel) insertProvisional(text, image string) Message {
	m := Message{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
		Sender: UserRef{
			ID:        c.owner.ID,
			Name:      c.owner.DisplayName,
			AvatarURL: c.owner.AvatarURL,
		},
		Image:          image,
		ConversationID: c.conversationID,
		Status:         StatusPending,
	}
	c.messages = append(c.messages, m)
	c.persist()
	c.publish("message.upserted", m.ID)
	return m
}

// reconcile replaces the provisional message with the backend's canonical
// record, matching by the provisional id rather than by position so rapid
// out-of-order acknowledgements cannot corrupt a different entry.
func (c *Channel) reconcile(provisionalID string, sent *transport.SentMessage) *Message {
	if id := sent.Conversation.String(); id != "" {
		c.conversationID = id
	}
	canonical := fromWireMessage(sent.Message)
	canonical.ConversationID = c.conversationID
	if canonical.Image == "" {
		// The backend did not report a hosted URL; keep the local reference.
		if i := c.index(provisionalID); i >= 0 {
			canonical.Image = c.messages[i].Image
		}
	}

	if i := c.index(provisionalID); i >= 0 {
		c.messages[i] = canonical
	} else {
		c.messages = append(c.messages, canonical)
	}
	c.persist()
	c.publish("message.send_ack", canonical.ID)
	return &canonical
}

func (c *Channel) markFailed(provisionalID string, cause error) *Message {
	c.logger.Warn("send failed, keeping optimistic message",
		zap.String("provisional_id", provisionalID), zap.Error(cause))
	i := c.index(provisionalID)
	if i < 0 {
		return nil
	}
	c.messages[i].Status = StatusFailed
	c.persist()
	c.publish("message.send_failed", provisionalID)
	m := c.messages[i]
	return &m
}

func (c *Channel) index(id string) int {
	for i, m := range c.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// persist overwrites the namespaced history entry whole. Failures are logged
// and ignored: the in-memory list remains the user-visible state.
func (c *Channel) persist() {
	raw, err := json.Marshal(c.messages)
	if err != nil {
		c.logger.Warn("history marshal failed", zap.Error(err))
		return
	}
	if err := c.store.Set(cache.MessageHistoryKey(c.owner.ID, c.counterpartID), raw); err != nil {
		c.logger.Warn("history persist failed", zap.Error(err))
	}
}

func (c *Channel) publish(kind, messageID string) {
	c.bus.Publish(bus.Event{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload: map[string]string{
			"counterpart_id": c.counterpartID,
			"message_id":     messageID,
		},
	})
}
