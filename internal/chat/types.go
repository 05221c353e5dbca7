// Package chat implements the conversation directory and per-conversation
// message channels: backend-first loads with namespaced cache fallback, and
// optimistic sends reconciled against the backend's canonical record.
package chat

import (
	"time"

	"github.com/amora-app/amora-chat/internal/transport"
)

// Status tracks a message's delivery state on this device.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// UserRef identifies a message sender or conversation counterpart.
type UserRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Message is a chat message as held in memory and in the cache. ID is a
// locally generated provisional id until the backend acknowledges the send,
// after which the canonical record replaces it in place.
type Message struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
	Sender         UserRef   `json:"sender"`
	Image          string    `json:"image,omitempty"`
	ConversationID string    `json:"conversationId,omitempty"`
	Status         Status    `json:"status,omitempty"`
}

// Mine reports whether the message was sent by the given owner. Sender ids
// are string-normalized at the transport boundary, so plain equality is safe.
func (m *Message) Mine(ownerID string) bool {
	return m.Sender.ID == ownerID
}

// Counterpart is the other participant's view data in a conversation.
type Counterpart struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	IsOnline  bool   `json:"isOnline"`
}

// LastMessage summarizes the most recent message of a conversation.
type LastMessage struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	SenderID  string    `json:"senderId"`
}

// Conversation is one entry of the user's conversation list.
type Conversation struct {
	ID          string       `json:"id"`
	OtherUser   Counterpart  `json:"otherUser"`
	LastMessage *LastMessage `json:"lastMessage,omitempty"`
	UnreadCount int          `json:"unreadCount"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// summary is the persisted conversation list entry. IsOnline carries the
// last-known value from a successful backend load; unread counts are
// authoritative-only and not persisted.
type summary struct {
	UserID      string       `json:"userId"`
	UserName    string       `json:"userName"`
	UserImage   string       `json:"userImage,omitempty"`
	IsOnline    bool         `json:"isOnline,omitempty"`
	LastMessage *LastMessage `json:"lastMessage,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// MediaAsset is a local media attachment to send. LocalRef is the device
// file reference shown optimistically until the backend supplies a hosted
// URL.
type MediaAsset struct {
	FileName    string
	ContentType string
	Data        []byte
	LocalRef    string
}

func fromWireConversation(w transport.Conversation) Conversation {
	c := Conversation{
		ID: w.ID.String(),
		OtherUser: Counterpart{
			ID:        w.OtherUser.ID.String(),
			Name:      w.OtherUser.FirstName,
			AvatarURL: w.OtherUser.AvatarURL(),
			IsOnline:  w.OtherUser.IsOnline,
		},
		UnreadCount: w.UnreadCount,
		UpdatedAt:   w.UpdatedAt,
	}
	if w.LastMessage != nil {
		c.LastMessage = &LastMessage{
			Text:      w.LastMessage.Text,
			CreatedAt: w.LastMessage.CreatedAt,
			SenderID:  w.LastMessage.SenderID.String(),
		}
	}
	return c
}

func fromWireMessage(w transport.Message) Message {
	return Message{
		ID:        w.ID.String(),
		Text:      w.Content,
		CreatedAt: w.CreatedAt,
		Sender: UserRef{
			ID:        w.Sender.ID.String(),
			Name:      w.Sender.FirstName,
			AvatarURL: w.Sender.AvatarURL(),
		},
		Image:  w.MediaURL,
		Status: StatusSent,
	}
}

func summaryOf(c Conversation) summary {
	return summary{
		UserID:      c.OtherUser.ID,
		UserName:    c.OtherUser.Name,
		UserImage:   c.OtherUser.AvatarURL,
		IsOnline:    c.OtherUser.IsOnline,
		LastMessage: c.LastMessage,
		UpdatedAt:   c.UpdatedAt,
	}
}

func fromSummary(s summary) Conversation {
	return Conversation{
		OtherUser: Counterpart{
			ID:        s.UserID,
			Name:      s.UserName,
			AvatarURL: s.UserImage,
			IsOnline:  s.IsOnline,
		},
		LastMessage: s.LastMessage,
		UnreadCount: 0,
		UpdatedAt:   s.UpdatedAt,
	}
}
