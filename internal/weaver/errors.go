package weaver

import "errors"

// Sentinel errors surfaced by Prompt. All failures propagate to the caller;
// nothing is retried or swallowed inside the weaver.
var (
	// ErrPromptFailed wraps an error from the LLM provider call.
	ErrPromptFailed = errors.New("weaver: prompting model failed")

	// ErrNoContent indicates the model returned a response with no usable text.
	ErrNoContent = errors.New("weaver: no content in model response")

	// ErrStorage wraps an error from the story store on load or save.
	ErrStorage = errors.New("weaver: storage failure")
)
