// Package weave defines the public wire types for the loom prompt API and
// a small HTTP client for them.
package weave

// PromptRequest is one conversational turn submitted to POST /v1/prompt or
// over the websocket stream.
type PromptRequest struct {
	// System is the system directive for the story.
	System string `json:"system,omitempty"`

	// WeavingID addresses the conversation lineage. Required.
	WeavingID string `json:"weaving_id"`

	// Message is the user's turn text. Required.
	Message string `json:"message"`

	// AccountID optionally identifies the participant.
	AccountID uint64 `json:"account_id,omitempty"`

	// Username is the caller's display name.
	Username string `json:"username,omitempty"`

	// PseudoUsername is appended to Username to form the effective
	// display name.
	PseudoUsername string `json:"pseudo_username,omitempty"`

	// MaxWords overrides the computed response word budget when positive.
	MaxWords int `json:"max_words,omitempty"`
}

// PromptResponse carries the model's reply for one turn.
type PromptResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the JSON body of every non-2xx prompt API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
