package story

import "context"

// WeavingID is an opaque, externally defined key identifying one ongoing
// conversation lineage. One lineage owns a succession of Parts over time.
type WeavingID interface {
	// BaseKey is the storage addressing key for the lineage.
	BaseKey() string
}

// Key is the trivial WeavingID: the key is the string itself.
type Key string

// BaseKey implements WeavingID.
func (k Key) BaseKey() string { return string(k) }

// Store is the narrow storage gateway contract. Implementations live in
// storage modules; errors they return are wrapped by callers, never
// interpreted.
type Store interface {
	// LastPart returns the most recent part for the lineage, or (nil, nil)
	// when no part has been persisted yet.
	LastPart(ctx context.Context, id WeavingID) (*Part, error)

	// SavePart persists part for the lineage. With increment true the part
	// is stored as a new revision; otherwise it replaces the latest
	// revision in place (creating revision 1 when none exists).
	SavePart(ctx context.Context, id WeavingID, part Part, increment bool) error
}
