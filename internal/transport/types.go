package transport

import (
	"bytes"
	"encoding/json"
	"time"
)

// FlexID is a backend identifier that may arrive as a JSON string or number.
// It always normalizes to its string form so equality checks downstream never
// compare heterogeneous types.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// Photo is a profile photo asset.
type Photo struct {
	URL string `json:"url"`
}

// User is the backend's user shape as it appears inside conversations,
// message senders, and profile responses.
type User struct {
	ID        FlexID  `json:"_id"`
	FirstName string  `json:"firstName"`
	Photos    []Photo `json:"photos"`
	IsOnline  bool    `json:"isOnline"`
}

// AvatarURL returns the user's first photo URL, or "" when none exists.
func (u *User) AvatarURL() string {
	if u == nil || len(u.Photos) == 0 {
		return ""
	}
	return u.Photos[0].URL
}

// LastMessage is the conversation list's inline message summary.
type LastMessage struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	SenderID  FlexID    `json:"senderId"`
}

// Conversation is the backend's conversation list entry.
type Conversation struct {
	ID          FlexID       `json:"_id"`
	OtherUser   User         `json:"otherUser"`
	LastMessage *LastMessage `json:"lastMessage"`
	UnreadCount int          `json:"unreadCount"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Message is the backend's canonical message record.
type Message struct {
	ID        FlexID    `json:"_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Sender    User      `json:"sender"`
	MediaURL  string    `json:"mediaUrl"`
}

// SentMessage is the send endpoints' response payload: the canonical message
// plus the id of the conversation it landed in (which the backend creates on
// the first exchange).
type SentMessage struct {
	Message
	Conversation FlexID `json:"conversation"`
}

// SendMessageRequest is the body of POST /api/chat/send-message.
type SendMessageRequest struct {
	Content        string `json:"content"`
	Type           string `json:"type"`
	RecipientID    string `json:"recipientId"`
	ConversationID string `json:"conversationId,omitempty"`
}

// SendMediaRequest describes a multipart media upload.
type SendMediaRequest struct {
	FileName       string
	ContentType    string
	Data           []byte
	RecipientID    string
	ConversationID string
}

type conversationsEnvelope struct {
	Success       bool           `json:"success"`
	Conversations []Conversation `json:"conversations"`
}

type messagesEnvelope struct {
	Success  bool      `json:"success"`
	Messages []Message `json:"messages"`
}

type sendEnvelope struct {
	Success bool         `json:"success"`
	Message *SentMessage `json:"message"`
}

type profileEnvelope struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}
