package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func staticToken(token string) TokenSource {
	return TokenFunc(func() (string, error) { return token, nil })
}

func TestFlexIDNormalization(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"string id", `"u1"`, "u1"},
		{"numeric id", `42`, "42"},
		{"large numeric id", `9007199254740993`, "9007199254740993"},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id FlexID
			if err := json.Unmarshal([]byte(tt.json), &id); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.json, err)
			}
			if id.String() != tt.want {
				t.Errorf("FlexID(%s) = %q, want %q", tt.json, id, tt.want)
			}
		})
	}
}

func TestConversationsSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"conversations":[]}`))
	}))
	defer srv.Close()

	c := NewClient(staticToken("tok-1"), WithBaseURL(srv.URL))
	if _, err := c.Conversations(context.Background()); err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
}

func TestConversationsDecodesHeterogeneousIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"conversations": [
				{"_id": 7, "otherUser": {"_id": "u2", "firstName": "Bia", "photos": [{"url": "https://cdn/p.jpg"}], "isOnline": true}, "unreadCount": 3}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(staticToken(""), WithBaseURL(srv.URL))
	conversations, err := c.Conversations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(conversations) != 1 {
		t.Fatalf("got %d conversations, want 1", len(conversations))
	}
	conv := conversations[0]
	if conv.ID.String() != "7" {
		t.Errorf("conversation id = %q, want 7", conv.ID)
	}
	if conv.OtherUser.ID.String() != "u2" {
		t.Errorf("other user id = %q, want u2", conv.OtherUser.ID)
	}
	if conv.OtherUser.AvatarURL() != "https://cdn/p.jpg" {
		t.Errorf("avatar = %q, want photo url", conv.OtherUser.AvatarURL())
	}
}

func TestRejectedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	c := NewClient(staticToken(""), WithBaseURL(srv.URL))
	if _, err := c.Conversations(context.Background()); !errors.Is(err, ErrRejected) {
		t.Errorf("Conversations() error = %v, want ErrRejected", err)
	}
	if _, err := c.Messages(context.Background(), "c1"); !errors.Is(err, ErrRejected) {
		t.Errorf("Messages() error = %v, want ErrRejected", err)
	}
	if _, err := c.UserProfile(context.Background(), "u1"); !errors.Is(err, ErrRejected) {
		t.Errorf("UserProfile() error = %v, want ErrRejected", err)
	}
}

func TestRejectedStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(staticToken(""), WithBaseURL(srv.URL))
	if _, err := c.Conversations(context.Background()); !errors.Is(err, ErrRejected) {
		t.Errorf("Conversations() error = %v, want ErrRejected", err)
	}
}

func TestSendMessageBody(t *testing.T) {
	var got SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/send-message" {
			t.Errorf("path = %q, want /api/chat/send-message", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"success": true,
			"message": {"_id": "m1", "content": "hello", "createdAt": "2026-08-30T12:00:00Z",
				"sender": {"_id": 1, "firstName": "Ana"}, "conversation": "c9"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(staticToken(""), WithBaseURL(srv.URL))
	sent, err := c.SendMessage(context.Background(), SendMessageRequest{
		Content:     "hello",
		Type:        "text",
		RecipientID: "u2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "hello" || got.Type != "text" || got.RecipientID != "u2" {
		t.Errorf("request body = %+v", got)
	}
	if got.ConversationID != "" {
		t.Errorf("conversationId = %q, want omitted", got.ConversationID)
	}
	if sent.ID.String() != "m1" {
		t.Errorf("sent id = %q, want m1", sent.ID)
	}
	if sent.Conversation.String() != "c9" {
		t.Errorf("conversation = %q, want c9", sent.Conversation)
	}
	if sent.Sender.ID.String() != "1" {
		t.Errorf("sender id = %q, want 1 (stringified)", sent.Sender.ID)
	}
}

func TestSendMediaMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("type"); got != "image" {
			t.Errorf("type field = %q, want image", got)
		}
		if got := r.FormValue("recipientId"); got != "u2" {
			t.Errorf("recipientId field = %q, want u2", got)
		}
		if got := r.FormValue("conversationId"); got != "c1" {
			t.Errorf("conversationId field = %q, want c1", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "pic.jpg" {
			t.Errorf("filename = %q, want pic.jpg", header.Filename)
		}
		if got := header.Header.Get("Content-Type"); got != "image/jpeg" {
			t.Errorf("file part Content-Type = %q, want image/jpeg", got)
		}
		_, _ = w.Write([]byte(`{
			"success": true,
			"message": {"_id": "m2", "createdAt": "2026-08-30T12:00:00Z",
				"sender": {"_id": "u1"}, "mediaUrl": "https://cdn/m2.jpg", "conversation": "c1"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(staticToken(""), WithBaseURL(srv.URL))
	sent, err := c.SendMedia(context.Background(), SendMediaRequest{
		FileName:       "pic.jpg",
		ContentType:    "image/jpeg",
		Data:           []byte("jpegbytes"),
		RecipientID:    "u2",
		ConversationID: "c1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if sent.MediaURL != "https://cdn/m2.jpg" {
		t.Errorf("media url = %q, want hosted url", sent.MediaURL)
	}
}
