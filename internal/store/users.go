// ABOUTME: User row operations for committed subject preferences
// ABOUTME: Topics are stored as a JSON array and overwritten on every commit

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SetUserTopics upserts the user row keyed by external id. The topics column
// is overwritten wholesale, matching commit semantics (replace, not merge).
func (s *SQLiteStore) SetUserTopics(ctx context.Context, externalID int64, username string, topics []string) error {
	if topics == nil {
		topics = []string{}
	}

	encoded, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("encoding topics: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO users (external_id, username, topics, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			username = excluded.username,
			topics = excluded.topics,
			updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, externalID, username, string(encoded), now, now); err != nil {
		return fmt.Errorf("upserting user %d: %w", externalID, err)
	}

	s.logger.Debug("user topics committed", "external_id", externalID, "topics", topics)
	return nil
}

// GetUserTopics returns the committed topics for the given external id.
// Returns ErrUserNotFound if the user has never committed a selection.
func (s *SQLiteStore) GetUserTopics(ctx context.Context, externalID int64) ([]string, error) {
	query := `SELECT topics FROM users WHERE external_id = ?`

	var encoded string
	err := s.db.QueryRowContext(ctx, query, externalID).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %d: %w", externalID, err)
	}

	var topics []string
	if err := json.Unmarshal([]byte(encoded), &topics); err != nil {
		return nil, fmt.Errorf("decoding topics for user %d: %w", externalID, err)
	}

	return topics, nil
}
