package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/loreweaver/loom/internal/story"
)

// rootBucket holds one nested bucket per weaving, keyed by its base key.
// Inside, parts are stored as JSON under 8-byte big-endian part numbers,
// so a cursor walks revisions in order.
var rootBucket = []byte("story_parts")

// partStore implements story.Store on a bbolt database.
type partStore struct {
	db *bbolt.DB
}

// LastPart returns the highest-numbered part for the lineage, or (nil, nil)
// when no part has been persisted yet.
func (s *partStore) LastPart(_ context.Context, id story.WeavingID) (*story.Part, error) {
	var part *story.Part
	err := s.db.View(func(tx *bbolt.Tx) error {
		weaving := tx.Bucket(rootBucket).Bucket([]byte(id.BaseKey()))
		if weaving == nil {
			return nil
		}
		_, raw := weaving.Cursor().Last()
		if raw == nil {
			return nil
		}
		part = &story.Part{}
		if err := json.Unmarshal(raw, part); err != nil {
			return fmt.Errorf("bolt: decode part: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

// SavePart persists part as a new revision (increment) or replaces the
// latest one, inside a single update transaction.
func (s *partStore) SavePart(_ context.Context, id story.WeavingID, part story.Part, increment bool) error {
	raw, err := json.Marshal(part)
	if err != nil {
		return fmt.Errorf("bolt: encode part: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		weaving, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(id.BaseKey()))
		if err != nil {
			return fmt.Errorf("bolt: create weaving bucket: %w", err)
		}

		var latest uint64
		if k, _ := weaving.Cursor().Last(); k != nil {
			latest = binary.BigEndian.Uint64(k)
		}

		target := latest
		if increment || latest == 0 {
			target = latest + 1
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, target)
		if err := weaving.Put(key, raw); err != nil {
			return fmt.Errorf("bolt: write part: %w", err)
		}
		return nil
	})
}

// revisions counts stored revisions for the lineage. Test helper.
func (s *partStore) revisions(id story.WeavingID) (int, error) {
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		weaving := tx.Bucket(rootBucket).Bucket([]byte(id.BaseKey()))
		if weaving == nil {
			return nil
		}
		return weaving.ForEach(func([]byte, []byte) error {
			n++
			return nil
		})
	})
	return n, err
}
