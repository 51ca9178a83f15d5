package story

import (
	"context"
	"testing"
	"time"

	"github.com/loreweaver/loom/internal/tokens"
)

func userMsg(content string) Message {
	return Message{
		Role:      RoleUser,
		Username:  "Bob",
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func assistantMsg(content string) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// ---------------------------------------------------------------------------
// Part
// ---------------------------------------------------------------------------

func TestPart_Append(t *testing.T) {
	t.Parallel()

	var p Part
	p.Append(userMsg("hello"), 2)
	p.Append(assistantMsg("well met"), 3)

	if len(p.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(p.Messages))
	}
	if p.ContextTokens != 5 {
		t.Errorf("ContextTokens = %d, want 5", p.ContextTokens)
	}
	if p.Messages[0].Role != RoleUser || p.Messages[1].Role != RoleAssistant {
		t.Errorf("messages out of order: %q, %q", p.Messages[0].Role, p.Messages[1].Role)
	}
}

func TestPart_AppendPairs_ChronologicalOrder(t *testing.T) {
	t.Parallel()

	var p Part
	const n = 5
	for range n {
		p.Append(userMsg("question"), 1)
		p.Append(assistantMsg("answer"), 1)
	}

	if len(p.Messages) != 2*n {
		t.Fatalf("len(Messages) = %d, want %d", len(p.Messages), 2*n)
	}
	for i, m := range p.Messages {
		wantRole := RoleUser
		if i%2 == 1 {
			wantRole = RoleAssistant
		}
		if m.Role != wantRole {
			t.Errorf("Messages[%d].Role = %q, want %q", i, m.Role, wantRole)
		}
	}
	if len(p.Players) != 0 {
		t.Errorf("roster changed by appends: %v", p.Players)
	}
}

func TestPart_Recount(t *testing.T) {
	t.Parallel()

	p := Part{
		Messages: []Message{
			userMsg("abcd"),     // 2 tokens at 4 chars/token
			assistantMsg("abcdabcd"), // 3 tokens
		},
		ContextTokens: 999, // drifted
	}

	got := p.Recount(tokens.NewCharCounter(0))
	if got != 5 {
		t.Errorf("Recount = %d, want 5", got)
	}
	if p.ContextTokens != 5 {
		t.Errorf("ContextTokens = %d, want 5", p.ContextTokens)
	}
}

func TestPart_Roster(t *testing.T) {
	t.Parallel()

	var p Part
	p.AddPlayer(7)
	p.AddPlayer(7)
	p.AddPlayer(11)

	if len(p.Players) != 2 {
		t.Fatalf("len(Players) = %d, want 2", len(p.Players))
	}
	if !p.HasPlayer(7) || !p.HasPlayer(11) {
		t.Error("expected players 7 and 11 on roster")
	}
	if p.HasPlayer(13) {
		t.Error("unexpected player 13")
	}
}

func TestPart_Clone_Independent(t *testing.T) {
	t.Parallel()

	var p Part
	p.AddPlayer(1)
	p.Append(userMsg("hello"), 2)

	cp := p.Clone()
	cp.Append(assistantMsg("reply"), 3)
	cp.AddPlayer(2)

	if len(p.Messages) != 1 {
		t.Errorf("original messages mutated: len = %d", len(p.Messages))
	}
	if p.ContextTokens != 2 {
		t.Errorf("original ContextTokens mutated: %d", p.ContextTokens)
	}
	if len(p.Players) != 1 {
		t.Errorf("original roster mutated: %v", p.Players)
	}
}

// ---------------------------------------------------------------------------
// MemoryStore
// ---------------------------------------------------------------------------

func TestMemoryStore_EmptyLineage(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	part, err := s.LastPart(context.Background(), Key("nobody"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if part != nil {
		t.Errorf("expected nil part for empty lineage, got %+v", part)
	}
}

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	id := Key("guild:42/story:1")

	var p Part
	p.AddPlayer(42)
	p.Append(userMsg("hello"), 2)

	if err := s.SavePart(context.Background(), id, p, false); err != nil {
		t.Fatalf("SavePart: %v", err)
	}

	got, err := s.LastPart(context.Background(), id)
	if err != nil {
		t.Fatalf("LastPart: %v", err)
	}
	if got == nil {
		t.Fatal("expected a part")
	}
	if len(got.Messages) != 1 || got.ContextTokens != 2 || !got.HasPlayer(42) {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestMemoryStore_ReplaceVsIncrement(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	id := Key("w")
	ctx := context.Background()

	var p Part
	p.Append(userMsg("one"), 1)
	if err := s.SavePart(ctx, id, p, false); err != nil {
		t.Fatal(err)
	}

	// Replace in place: still one revision.
	p.Append(assistantMsg("two"), 1)
	if err := s.SavePart(ctx, id, p, false); err != nil {
		t.Fatal(err)
	}
	if got := s.Revisions(id); got != 1 {
		t.Errorf("revisions after replace = %d, want 1", got)
	}

	// Increment: a second revision appears and becomes the latest.
	var next Part
	next.Append(userMsg("fresh"), 1)
	if err := s.SavePart(ctx, id, next, true); err != nil {
		t.Fatal(err)
	}
	if got := s.Revisions(id); got != 2 {
		t.Errorf("revisions after increment = %d, want 2", got)
	}

	latest, err := s.LastPart(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(latest.Messages) != 1 || latest.Messages[0].Content != "fresh" {
		t.Errorf("latest revision mismatch: %+v", latest)
	}
}

func TestMemoryStore_SaveIsCopy(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	id := Key("w")
	ctx := context.Background()

	var p Part
	p.Append(userMsg("one"), 1)
	if err := s.SavePart(ctx, id, p, false); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's part after save must not affect stored state.
	p.Append(assistantMsg("unsaved"), 1)

	got, err := s.LastPart(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != 1 {
		t.Errorf("stored part mutated through caller copy: %d messages", len(got.Messages))
	}
}
