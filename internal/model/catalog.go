// Package model is the static catalog of supported LLM variants and the
// token/word budget arithmetic tied to their context windows.
package model

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Model is the canonical name of an LLM variant (e.g. "gpt-4").
type Model string

// Built-in models.
const (
	GPT3 Model = "gpt-3.5-turbo"
	GPT4 Model = "gpt-4"
)

// Descriptor holds the static properties of one model variant.
type Descriptor struct {
	// Name is the canonical model name sent to the provider.
	Name Model

	// ContextTokens is the maximum total tokens (history + response)
	// the model can process in one request.
	ContextTokens int

	// Encoding is the tiktoken encoding family of the model's tokenizer.
	Encoding string
}

var (
	catalogMu sync.RWMutex
	catalog   = map[Model]Descriptor{
		GPT3: {Name: GPT3, ContextTokens: 4096, Encoding: "p50k_base"},
		GPT4: {Name: GPT4, ContextTokens: 8192, Encoding: "p50k_base"},
	}
	aliases = map[string]Model{
		"gpt3": GPT3,
		"gpt4": GPT4,
	}
)

// Register adds a custom model descriptor to the catalog, replacing any
// existing entry with the same name. Intended for config-supplied variants.
func Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("model: descriptor name must not be empty")
	}
	if d.ContextTokens <= 0 {
		return fmt.Errorf("model: %s: context_tokens must be positive, got %d", d.Name, d.ContextTokens)
	}
	if d.Encoding == "" {
		d.Encoding = "p50k_base"
	}

	catalogMu.Lock()
	defer catalogMu.Unlock()
	catalog[d.Name] = d
	return nil
}

// Parse resolves a model name or alias ("gpt3", "gpt4") to a catalog Model.
func Parse(name string) (Model, error) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()

	if m, ok := aliases[name]; ok {
		return m, nil
	}
	if _, ok := catalog[Model(name)]; ok {
		return Model(name), nil
	}
	return "", fmt.Errorf("model: unknown model %q", name)
}

// All returns every catalog descriptor sorted by name.
func All() []Descriptor {
	catalogMu.RLock()
	defer catalogMu.RUnlock()

	out := make([]Descriptor, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Descriptor) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// descriptor returns the catalog entry for m, or a zero Descriptor if m is
// not registered.
func (m Model) descriptor() Descriptor {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	return catalog[m]
}

// ContextTokens returns the model's context window capacity in tokens.
// Unregistered models report 0.
func (m Model) ContextTokens() int {
	return m.descriptor().ContextTokens
}

// Encoding returns the tiktoken encoding family of the model's tokenizer.
func (m Model) Encoding() string {
	return m.descriptor().Encoding
}
