package model

// wordsPerToken converts a token budget into a word budget. One token is
// roughly three quarters of a word for the target tokenizer family.
const wordsPerToken = 0.75

// ResponseTokenBudget returns the default maximum-response-token policy for
// this model given the tokens already consumed by context:
//
//	(context_window_capacity − tokens_already_in_context) / 3
//
// The divide-by-3 reserves capacity for the system directive, the echoed
// context, and headroom against tokenizer estimation error, rather than
// spending the full remaining window on the response. The result is clamped
// to zero when the context already meets or exceeds capacity; callers are
// expected to reject over-capacity contexts before generation.
func (m Model) ResponseTokenBudget(contextTokens int) int {
	capacity := m.ContextTokens()
	if contextTokens >= capacity {
		return 0
	}
	return (capacity - contextTokens) / 3
}

// WordBudget converts a token budget to a word budget, truncated.
func WordBudget(tokens int) int {
	return int(float64(tokens) * wordsPerToken)
}

// ResponseWordBudget returns the word budget for a response: the override
// verbatim when positive, otherwise the computed default converted to words.
func (m Model) ResponseWordBudget(contextTokens, overrideWords int) int {
	if overrideWords > 0 {
		return overrideWords
	}
	return WordBudget(m.ResponseTokenBudget(contextTokens))
}
