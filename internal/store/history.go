package store

import (
	"time"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
)

// AppendHistory records one conversation turn half (user or assistant).
func (s *Store) AppendHistory(userID string, ts time.Time, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO conversation_history (user_id, ts, role, content) VALUES (?, ?, ?, ?)`,
		userID, ts.UTC(), role, content,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to append history for %s: %v", userID, err)
		return err
	}
	logging.StoreDebug("Appended history: user=%s role=%s len=%d", userID, role, len(content))
	return nil
}

// RecentHistory returns the most recent history entries for a user in
// chronological order.
func (s *Store) RecentHistory(userID string, limit int) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT user_id, ts, role, content FROM conversation_history
		 WHERE user_id = ? ORDER BY ts DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to query history for %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.UserID, &e.Timestamp, &e.Role, &e.Content); err != nil {
			continue
		}
		entries = append(entries, e)
	}

	// Reverse into chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, rows.Err()
}
