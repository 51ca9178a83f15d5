package model

import "testing"

// ----------------------------------------------------------------------------
// Parse / Register / All
// ----------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Model
		wantErr bool
	}{
		{"alias gpt3", "gpt3", GPT3, false},
		{"alias gpt4", "gpt4", GPT4, false},
		{"canonical gpt-3.5-turbo", "gpt-3.5-turbo", GPT3, false},
		{"canonical gpt-4", "gpt-4", GPT4, false},
		{"unknown", "claude-3", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q): expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	if err := Register(Descriptor{Name: "story-large", ContextTokens: 16384}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	m, err := Parse("story-large")
	if err != nil {
		t.Fatalf("Parse after Register: %v", err)
	}
	if m.ContextTokens() != 16384 {
		t.Errorf("ContextTokens = %d, want 16384", m.ContextTokens())
	}
	// Encoding defaults when omitted.
	if m.Encoding() != "p50k_base" {
		t.Errorf("Encoding = %q, want p50k_base", m.Encoding())
	}
}

func TestRegister_Invalid(t *testing.T) {
	if err := Register(Descriptor{Name: "", ContextTokens: 100}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := Register(Descriptor{Name: "bad", ContextTokens: 0}); err == nil {
		t.Error("expected error for zero context window")
	}
}

func TestAll_SortedByName(t *testing.T) {
	all := All()
	if len(all) < 2 {
		t.Fatalf("expected at least the built-ins, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Errorf("descriptors not sorted: %q before %q", all[i-1].Name, all[i].Name)
		}
	}
}

func TestCapacities(t *testing.T) {
	t.Parallel()

	if got := GPT3.ContextTokens(); got != 4096 {
		t.Errorf("GPT3 capacity = %d, want 4096", got)
	}
	if got := GPT4.ContextTokens(); got != 8192 {
		t.Errorf("GPT4 capacity = %d, want 8192", got)
	}
	if got := Model("ghost").ContextTokens(); got != 0 {
		t.Errorf("unregistered capacity = %d, want 0", got)
	}
}
