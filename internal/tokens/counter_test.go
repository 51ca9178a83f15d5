package tokens

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// NewCharCounter
// ---------------------------------------------------------------------------

func TestNewCharCounter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		charsPerToken float64
		wantRatio     float64
	}{
		{name: "valid_ratio", charsPerToken: 3.0, wantRatio: 3.0},
		{name: "zero_defaults_to_4", charsPerToken: 0, wantRatio: 4.0},
		{name: "negative_defaults_to_4", charsPerToken: -1.5, wantRatio: 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewCharCounter(tt.charsPerToken)
			if c.CharsPerToken != tt.wantRatio {
				t.Errorf("NewCharCounter(%v).CharsPerToken = %v, want %v",
					tt.charsPerToken, c.CharsPerToken, tt.wantRatio)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// CharCounter.Count
// ---------------------------------------------------------------------------

func TestCharCounter_Count(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		charsPerToken float64 // 0 means default (4.0)
		input         string
		want          int
	}{
		{name: "empty", charsPerToken: 0, input: "", want: 0},
		{name: "single_char", charsPerToken: 0, input: "a", want: 1},
		{name: "four_chars", charsPerToken: 0, input: "abcd", want: 2},
		{name: "sentence", charsPerToken: 0, input: "the quick brown fox", want: 5},
		{name: "custom_ratio", charsPerToken: 2.0, input: "abcdef", want: 4},
		{name: "long_text", charsPerToken: 0, input: strings.Repeat("x", 400), want: 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewCharCounter(tt.charsPerToken)
			if got := c.Count(tt.input); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCharCounter_Deterministic(t *testing.T) {
	t.Parallel()

	c := NewCharCounter(0)
	text := "once upon a time in a weaving far away"
	first := c.Count(text)
	for range 10 {
		if got := c.Count(text); got != first {
			t.Fatalf("Count is not deterministic: got %d then %d", first, got)
		}
	}
}

// ---------------------------------------------------------------------------
// NewBPE
// ---------------------------------------------------------------------------

func TestNewBPE_UnknownEncoding(t *testing.T) {
	t.Parallel()

	if _, err := NewBPE("no-such-encoding"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}
