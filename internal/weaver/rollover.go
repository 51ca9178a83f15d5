package weaver

import (
	"context"

	"github.com/loreweaver/loom/internal/model"
	"github.com/loreweaver/loom/internal/story"
)

// RolloverPolicy decides when a story part is full and the next prompt
// should begin a fresh part.
type RolloverPolicy interface {
	ShouldRollover(m model.Model, part *story.Part) bool
}

// Summarizer condenses a full story part into a single message that seeds
// the next part. No summarization algorithm ships with loom; without a
// configured Summarizer rollover never triggers.
type Summarizer interface {
	Summarize(ctx context.Context, part *story.Part) (story.Message, error)
}

// ThresholdPolicy triggers rollover once a part's cumulative tokens reach
// Ratio of the model's context window.
type ThresholdPolicy struct {
	// Ratio in (0, 1]. Zero or negative selects the default 0.8.
	Ratio float64
}

// DefaultRolloverRatio is the fill fraction at which a part is considered full.
const DefaultRolloverRatio = 0.8

// Compile-time interface check.
var _ RolloverPolicy = ThresholdPolicy{}

// ShouldRollover implements RolloverPolicy.
func (p ThresholdPolicy) ShouldRollover(m model.Model, part *story.Part) bool {
	ratio := p.Ratio
	if ratio <= 0 {
		ratio = DefaultRolloverRatio
	}
	capacity := m.ContextTokens()
	if capacity <= 0 {
		return false
	}
	return float64(part.ContextTokens) >= ratio*float64(capacity)
}
