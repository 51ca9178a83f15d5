package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/loreweaver/loom/internal/story"
)

// partStore implements story.Store on the story_parts table. One row per
// part revision; the highest part number is the live revision.
type partStore struct {
	db *sql.DB
}

// LastPart returns the highest-numbered part for the lineage, or (nil, nil)
// when no part has been persisted yet.
func (s *partStore) LastPart(ctx context.Context, id story.WeavingID) (*story.Part, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT players, context_tokens, messages
		 FROM story_parts
		 WHERE weaving = ?
		 ORDER BY part DESC
		 LIMIT 1`,
		id.BaseKey(),
	)

	var playersJSON, messagesJSON string
	var contextTokens int
	if err := row.Scan(&playersJSON, &contextTokens, &messagesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: load part: %w", err)
	}

	part := &story.Part{ContextTokens: contextTokens}
	if err := json.Unmarshal([]byte(playersJSON), &part.Players); err != nil {
		return nil, fmt.Errorf("sqlite: decode players: %w", err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &part.Messages); err != nil {
		return nil, fmt.Errorf("sqlite: decode messages: %w", err)
	}
	return part, nil
}

// SavePart persists part as a new revision (increment) or replaces the
// latest one. The read-decide-write sequence runs in one transaction.
func (s *partStore) SavePart(ctx context.Context, id story.WeavingID, part story.Part, increment bool) error {
	playersJSON, err := json.Marshal(part.Players)
	if err != nil {
		return fmt.Errorf("sqlite: encode players: %w", err)
	}
	messagesJSON, err := json.Marshal(part.Messages)
	if err != nil {
		return fmt.Errorf("sqlite: encode messages: %w", err)
	}
	if part.Players == nil {
		playersJSON = []byte("[]")
	}
	if part.Messages == nil {
		messagesJSON = []byte("[]")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var latest int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(part), 0) FROM story_parts WHERE weaving = ?",
		id.BaseKey(),
	).Scan(&latest); err != nil {
		return fmt.Errorf("sqlite: read latest part: %w", err)
	}

	if increment || latest == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO story_parts (weaving, part, players, context_tokens, messages)
			 VALUES (?, ?, ?, ?, ?)`,
			id.BaseKey(), latest+1, string(playersJSON), part.ContextTokens, string(messagesJSON),
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE story_parts
			 SET players = ?, context_tokens = ?, messages = ?,
			     updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
			 WHERE weaving = ? AND part = ?`,
			string(playersJSON), part.ContextTokens, string(messagesJSON), id.BaseKey(), latest,
		)
	}
	if err != nil {
		return fmt.Errorf("sqlite: write part: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit save: %w", err)
	}
	return nil
}
