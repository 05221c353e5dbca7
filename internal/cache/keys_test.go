package cache

import "testing"

func TestKeyShapes(t *testing.T) {
	if got := ConversationListKey("u1"); got != "all_conversations_u1" {
		t.Errorf("ConversationListKey(u1) = %q, want all_conversations_u1", got)
	}
	if got := MessageHistoryKey("u1", "u2"); got != "conversation_u1_u2" {
		t.Errorf("MessageHistoryKey(u1, u2) = %q, want conversation_u1_u2", got)
	}
}

func TestLegacyHistoryCounterpart(t *testing.T) {
	tests := []struct {
		name            string
		key             string
		wantCounterpart string
		wantLegacy      bool
	}{
		{"legacy history", "conversation_u2", "u2", true},
		{"already namespaced", "conversation_u1_u2", "", false},
		{"namespaced under another owner", "conversation_u9_u2", "", false},
		{"conversation list", "all_conversations", "", false},
		{"namespaced list", "all_conversations_u1", "", false},
		{"unrelated key", "user_profile", "", false},
		{"bare prefix", "conversation_", "", false},
		{"not a prefix match", "conversations_u2", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counterpart, legacy := legacyHistoryCounterpart(tt.key)
			if legacy != tt.wantLegacy {
				t.Errorf("legacyHistoryCounterpart(%q) legacy = %v, want %v", tt.key, legacy, tt.wantLegacy)
			}
			if counterpart != tt.wantCounterpart {
				t.Errorf("counterpart = %q, want %q", counterpart, tt.wantCounterpart)
			}
		})
	}
}
