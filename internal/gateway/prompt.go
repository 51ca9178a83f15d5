package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/loreweaver/loom/internal/provider"
	"github.com/loreweaver/loom/internal/story"
	"github.com/loreweaver/loom/internal/weaver"
	"github.com/loreweaver/loom/pkg/weave"
)

// maxRequestBody caps the prompt request body size (1 MB).
const maxRequestBody = 1 << 20

// errBadRequest marks request validation failures.
var errBadRequest = errors.New("bad request")

// handlePrompt returns an http.HandlerFunc for POST /v1/prompt.
func (g *Gateway) handlePrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req weave.PromptRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		reply, err := g.prompt(r.Context(), req)
		if err != nil {
			writeError(w, promptStatus(err), err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(weave.PromptResponse{Reply: reply})
	}
}

// prompt validates a wire request and runs it through the engine. Shared
// by the JSON and websocket handlers.
func (g *Gateway) prompt(ctx context.Context, req weave.PromptRequest) (string, error) {
	if req.WeavingID == "" {
		return "", fmt.Errorf("%w: weaving_id is required", errBadRequest)
	}
	if req.Message == "" {
		return "", fmt.Errorf("%w: message is required", errBadRequest)
	}

	return g.engine.Prompt(ctx, weaver.PromptRequest{
		System:         req.System,
		WeavingID:      story.Key(req.WeavingID),
		Message:        req.Message,
		AccountID:      story.AccountID(req.AccountID),
		Username:       req.Username,
		PseudoUsername: req.PseudoUsername,
		MaxWords:       req.MaxWords,
	})
}

// promptStatus maps an engine error onto an HTTP status code.
func promptStatus(err error) int {
	switch {
	case errors.Is(err, provider.ErrContextLength):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, provider.ErrRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, provider.ErrProviderDown):
		return http.StatusServiceUnavailable
	case errors.Is(err, weaver.ErrNoContent), errors.Is(err, weaver.ErrPromptFailed):
		return http.StatusBadGateway
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		// Storage failures, corrupted story state, everything else.
		return http.StatusInternalServerError
	}
}

// writeError writes the uniform JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(weave.ErrorResponse{Error: msg})
}
