// Package story defines the versioned conversation record (story parts),
// the identity that addresses it, and the storage gateway contract.
package story

import (
	"slices"
	"time"

	"github.com/loreweaver/loom/internal/tokens"
)

// Message roles. Any other value is a data-corruption error and is rejected
// at render time, never silently coerced.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AccountID is a platform-agnostic identifier for one participant.
type AccountID uint64

// Message is one turn in a conversation. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	AccountID AccountID `json:"account_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Part is one contiguous story segment: an append-only message sequence,
// the participant roster, and the cumulative token count of its messages.
//
// ContextTokens must always equal the sum of the token counts of Messages.
// Append keeps it in sync; Recount rebuilds it from scratch for records
// loaded from storage, where drift may have crept in.
type Part struct {
	Players       []AccountID `json:"players"`
	ContextTokens int         `json:"context_tokens"`
	Messages      []Message   `json:"context_messages"`
}

// Append adds msg to the part and bumps the cumulative token count by the
// message's token cost. Insertion order is conversational order.
func (p *Part) Append(msg Message, msgTokens int) {
	p.Messages = append(p.Messages, msg)
	p.ContextTokens += msgTokens
}

// Recount recomputes ContextTokens from the current messages using c.
// Returns the fresh count.
func (p *Part) Recount(c tokens.Counter) int {
	total := 0
	for i := range p.Messages {
		total += c.Count(p.Messages[i].Content)
	}
	p.ContextTokens = total
	return total
}

// HasPlayer reports whether id is on the roster.
func (p *Part) HasPlayer(id AccountID) bool {
	return slices.Contains(p.Players, id)
}

// AddPlayer adds id to the roster if not already present.
func (p *Part) AddPlayer(id AccountID) {
	if !p.HasPlayer(id) {
		p.Players = append(p.Players, id)
	}
}

// Clone returns a deep copy of the part. Orchestration mutates the copy so
// a failed prompt cycle never disturbs loaded state.
func (p *Part) Clone() *Part {
	cp := &Part{
		Players:       slices.Clone(p.Players),
		ContextTokens: p.ContextTokens,
		Messages:      slices.Clone(p.Messages),
	}
	return cp
}
