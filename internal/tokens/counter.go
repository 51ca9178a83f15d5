// Package tokens provides deterministic token counting for sizing LLM
// context windows and response budgets.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is configured.
// It matches the tokenizer family of the default chat models.
const DefaultEncoding = "p50k_base"

// Counter counts the tokens in a piece of text. Implementations must be
// pure: the same text always yields the same non-negative count.
type Counter interface {
	Count(text string) int
}

// BPECounter counts tokens with a real BPE tokenizer via tiktoken.
// Construction is the only error point; a failure there is a startup
// precondition, not a per-call condition.
type BPECounter struct {
	enc *tiktoken.Tiktoken
}

// NewBPE returns a BPECounter for the named encoding (e.g. "p50k_base",
// "cl100k_base"). An empty name selects DefaultEncoding.
func NewBPE(encoding string) (*BPECounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokens: loading encoding %q: %w", encoding, err)
	}
	return &BPECounter{enc: enc}, nil
}

// Count returns the number of BPE tokens in text. Special tokens are
// counted as ordinary text rather than rejected.
func (c *BPECounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, []string{"all"}, nil))
}

// CharCounter estimates tokens using a characters-per-token ratio.
// A ratio of ~4 works well for English; ~3 for French or other Latin
// languages. Cheaper than BPE and close enough for budget headroom.
type CharCounter struct {
	CharsPerToken float64
}

// NewCharCounter creates a CharCounter with the given ratio.
// If charsPerToken is <= 0, defaults to 4.0 (English approximation).
func NewCharCounter(charsPerToken float64) *CharCounter {
	if charsPerToken <= 0 {
		charsPerToken = 4.0
	}
	return &CharCounter{CharsPerToken: charsPerToken}
}

// Count returns the estimated token count for the given text.
func (c *CharCounter) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := float64(len(text)) / c.CharsPerToken
	// Always round up to avoid underestimation.
	return int(tokens) + 1
}

// Compile-time interface guards.
var (
	_ Counter = (*BPECounter)(nil)
	_ Counter = (*CharCounter)(nil)
)
