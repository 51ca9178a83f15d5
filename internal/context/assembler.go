// Package ctxweave builds the ordered message payload sent to the LLM from
// stored story history plus the new turn, attaching role and display-name
// metadata.
package ctxweave

import (
	"errors"
	"fmt"

	"github.com/loreweaver/loom/internal/provider"
	"github.com/loreweaver/loom/internal/story"
)

// ErrInvalidRole reports a story message whose role is outside the three
// recognized values. This is corrupted state, surfaced as a typed error so
// one bad record cannot take the process down.
var ErrInvalidRole = errors.New("ctxweave: invalid message role")

// DefaultSystemName is the display name attached to system-role story
// entries in the rendered payload.
const DefaultSystemName = "Loreweaver"

// ComposeUsername returns the effective display name for a turn: the
// literal concatenation of username and pseudo-username, no separator.
// Composed once per prompt call and reused for every rendered message of
// that turn.
func ComposeUsername(username, pseudoUsername string) string {
	return username + pseudoUsername
}

// MapRole maps a story role onto the provider's role enumeration. The
// mapping is total and deterministic for the three valid roles; anything
// else is rejected with ErrInvalidRole, never silently coerced.
func MapRole(role string) (provider.MessageRole, error) {
	switch role {
	case story.RoleSystem:
		return provider.MessageRoleSystem, nil
	case story.RoleUser:
		return provider.MessageRoleUser, nil
	case story.RoleAssistant:
		return provider.MessageRoleAssistant, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
}

// Assembler renders story parts into provider message payloads.
type Assembler struct {
	// SystemName is the display name for system-role story entries.
	SystemName string
}

// NewAssembler returns an Assembler with the default system display name.
func NewAssembler() *Assembler {
	return &Assembler{SystemName: DefaultSystemName}
}

// Assemble appends msg (costing msgTokens) to part, then renders the
// request payload: the system directive first as an unnamed system entry,
// followed by every story message with its mapped role and display name:
// SystemName for system-role entries, displayName for user and assistant
// entries.
func (a *Assembler) Assemble(directive string, part *story.Part, msg story.Message, msgTokens int, displayName string) ([]provider.Message, error) {
	part.Append(msg, msgTokens)

	out := make([]provider.Message, 0, len(part.Messages)+1)
	out = append(out, provider.Message{
		Role:    provider.MessageRoleSystem,
		Content: directive,
	})

	for i := range part.Messages {
		m := &part.Messages[i]
		role, err := MapRole(m.Role)
		if err != nil {
			return nil, err
		}

		name := displayName
		if m.Role == story.RoleSystem {
			name = a.SystemName
		}

		out = append(out, provider.Message{
			Role:    role,
			Content: m.Content,
			Name:    name,
		})
	}

	return out, nil
}
