package cache

import (
	"go.uber.org/zap"
)

// MigrateLegacy rewrites pre-namespacing cache keys into the owner-scoped
// scheme and deletes the originals. It is idempotent and safe to run on
// every startup: once no legacy keys remain it performs no copies and
// returns false.
//
// Migration is best-effort per key: a failure moving one key is logged and
// skipped so the remaining keys still migrate.
func MigrateLegacy(s *Store, ownerID string, logger *zap.Logger) (bool, error) {
	migrated := false

	// Pre-namespacing conversation list.
	if value, err := s.Get(legacyConversationListKey); err != nil {
		logger.Warn("failed to read legacy conversation list", zap.Error(err))
	} else if value != nil {
		if err := s.Set(ConversationListKey(ownerID), value); err != nil {
			logger.Warn("failed to migrate legacy conversation list", zap.Error(err))
		} else if err := s.Remove(legacyConversationListKey); err != nil {
			logger.Warn("failed to remove legacy conversation list", zap.Error(err))
		} else {
			migrated = true
		}
	}

	// Pre-namespacing per-counterpart message histories.
	keys, err := s.Keys()
	if err != nil {
		return migrated, err
	}
	for _, key := range keys {
		counterpartID, ok := legacyHistoryCounterpart(key)
		if !ok {
			continue
		}
		value, err := s.Get(key)
		if err != nil || value == nil {
			logger.Warn("failed to read legacy history", zap.String("key", key), zap.Error(err))
			continue
		}
		if err := s.Set(MessageHistoryKey(ownerID, counterpartID), value); err != nil {
			logger.Warn("failed to migrate legacy history", zap.String("key", key), zap.Error(err))
			continue
		}
		if err := s.Remove(key); err != nil {
			logger.Warn("failed to remove legacy history", zap.String("key", key), zap.Error(err))
			continue
		}
		migrated = true
	}

	return migrated, nil
}
