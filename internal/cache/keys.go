package cache

import "strings"

// Key families for chat state. Every namespaced key embeds the owner's user
// id so one account's data can never leak into another account's view after
// a device account switch.
const (
	familyConversationList = "all_conversations"
	familyMessageHistory   = "conversation"

	sep = "_"
)

// ProfileKey holds the cached full profile written by the account screens.
// It is outside the chat key families and is never touched by migration.
const ProfileKey = "user_profile"

// ConversationListKey returns the key holding the owner's conversation
// summaries: all_conversations_{ownerID}.
func ConversationListKey(ownerID string) string {
	return familyConversationList + sep + ownerID
}

// MessageHistoryKey returns the key holding the message history between the
// owner and a counterpart: conversation_{ownerID}_{counterpartID}.
func MessageHistoryKey(ownerID, counterpartID string) string {
	return familyMessageHistory + sep + ownerID + sep + counterpartID
}

// legacyConversationListKey is the pre-namespacing conversation list key.
const legacyConversationListKey = familyConversationList

// legacyHistoryCounterpart reports whether key is a pre-namespacing message
// history key (conversation_{counterpartID} with no owner segment) and, if
// so, returns the counterpart id. A remainder containing the separator means
// the key is already namespaced — possibly under a different owner on a
// shared device — and must be left untouched.
func legacyHistoryCounterpart(key string) (string, bool) {
	prefix := familyMessageHistory + sep
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	rest := key[len(prefix):]
	if rest == "" || strings.Contains(rest, sep) {
		return "", false
	}
	return rest, true
}
