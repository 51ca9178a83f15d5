// Package weaver implements the prompt orchestrator: it sequences story
// retrieval, token budgeting, context assembly, the LLM call, and story
// persistence for one conversational turn.
package weaver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ctxweave "github.com/loreweaver/loom/internal/context"
	"github.com/loreweaver/loom/internal/model"
	"github.com/loreweaver/loom/internal/provider"
	"github.com/loreweaver/loom/internal/story"
	"github.com/loreweaver/loom/internal/tokens"
)

// Fixed generation parameters for story prompts. The word budget is
// communicated through an injected instruction, not a hard parameter;
// maxResponseTokens is the independent hard cap.
const (
	temperature       = 0.9
	presencePenalty   = 0.6
	frequencyPenalty  = 0.6
	maxResponseTokens = 300
)

// ModelSource supplies the active model descriptor per invocation. The
// selection itself (deployment config, CLI flag) lives outside the engine.
type ModelSource interface {
	Active() model.Model
}

// StaticModelSource is a ModelSource pinned to one model.
type StaticModelSource struct {
	Model model.Model
}

// Active implements ModelSource.
func (s StaticModelSource) Active() model.Model { return s.Model }

// Observer receives per-prompt measurements after each cycle, successful
// or not. Implementations must be safe for concurrent use.
type Observer interface {
	ObservePrompt(weaving string, contextTokens int, duration time.Duration, err error)
}

// Options configures a Weaver. Provider, Counter, and Models are required;
// the rest default to sensible in-process implementations.
type Options struct {
	Provider   provider.Provider
	Counter    tokens.Counter
	Models     ModelSource
	Store      story.Store          // default: in-memory store
	Assembler  *ctxweave.Assembler  // default: NewAssembler()
	Policy     RolloverPolicy       // default: ThresholdPolicy{}
	Summarizer Summarizer           // default: none (rollover disabled)
	Observer   Observer             // optional
	Logger     *slog.Logger         // default: slog.Default()
}

// Weaver orchestrates one prompt cycle per call. All collaborators are
// injected at construction; the weaver holds no global state.
type Weaver struct {
	llm        provider.Provider
	counter    tokens.Counter
	models     ModelSource
	store      story.Store
	assembler  *ctxweave.Assembler
	policy     RolloverPolicy
	summarizer Summarizer
	observer   Observer
	lanes      *LaneLock
	logger     *slog.Logger
	tracer     trace.Tracer
}

// New creates a Weaver from opts.
func New(opts Options) (*Weaver, error) {
	if opts.Provider == nil {
		return nil, errors.New("weaver: provider is required")
	}
	if opts.Counter == nil {
		return nil, errors.New("weaver: token counter is required")
	}
	if opts.Models == nil {
		return nil, errors.New("weaver: model source is required")
	}
	if opts.Store == nil {
		opts.Store = story.NewMemoryStore()
	}
	if opts.Assembler == nil {
		opts.Assembler = ctxweave.NewAssembler()
	}
	if opts.Policy == nil {
		opts.Policy = ThresholdPolicy{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Weaver{
		llm:        opts.Provider,
		counter:    opts.Counter,
		models:     opts.Models,
		store:      opts.Store,
		assembler:  opts.Assembler,
		policy:     opts.Policy,
		summarizer: opts.Summarizer,
		observer:   opts.Observer,
		lanes:      NewLaneLock(),
		logger:     opts.Logger,
		tracer:     otel.Tracer("loom/weaver"),
	}, nil
}

// Lanes returns the per-weaving lock, exposed for maintenance sweeps.
func (w *Weaver) Lanes() *LaneLock {
	return w.lanes
}

// PromptRequest carries one conversational turn into Prompt.
type PromptRequest struct {
	// System is the system directive rendered first in the payload.
	System string

	// WeavingID addresses the conversation lineage.
	WeavingID story.WeavingID

	// Message is the user's turn text.
	Message string

	// AccountID optionally identifies the participant.
	AccountID story.AccountID

	// Username is the caller's display name.
	Username string

	// PseudoUsername, when set, is concatenated onto Username (no
	// separator) to form the turn's effective display name.
	PseudoUsername string

	// MaxWords overrides the computed response word budget when positive.
	MaxWords int
}

// Prompt runs one full cycle: load the lineage's latest story part, merge
// the user turn, call the model within a computed word budget, append the
// reply, and persist. The persisted state is untouched on any failure:
// all mutation happens on an in-memory copy and persistence is the final
// step. Concurrent calls for one weaving serialize on its lane.
func (w *Weaver) Prompt(ctx context.Context, req PromptRequest) (string, error) {
	if req.WeavingID == nil {
		return "", errors.New("weaver: weaving id is required")
	}

	key := req.WeavingID.BaseKey()
	w.lanes.Acquire(key)
	defer w.lanes.Release(key)

	started := time.Now()
	m := w.models.Active()
	invocation := uuid.NewString()
	logger := w.logger.With("weaving", key, "model", string(m), "invocation", invocation)

	ctx, span := w.tracer.Start(ctx, "loom.weaver.prompt", trace.WithAttributes(
		attribute.String("loom.weaving", key),
		attribute.String("loom.model", string(m)),
		attribute.String("loom.invocation", invocation),
	))
	defer span.End()

	part, reply, err := w.promptCycle(ctx, logger, m, req)

	contextTokens := 0
	if part != nil {
		contextTokens = part.ContextTokens
		span.SetAttributes(attribute.Int("loom.context_tokens", contextTokens))
	}
	if w.observer != nil {
		w.observer.ObservePrompt(key, contextTokens, time.Since(started), err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("prompt cycle failed", "error", err)
		return "", err
	}

	logger.Debug("prompt cycle complete",
		"context_tokens", contextTokens,
		"messages", len(part.Messages),
		"duration", time.Since(started),
	)
	return reply, nil
}

// promptCycle is the sequenced body of Prompt, split out so Prompt can
// uniformly attach span status and observer measurements.
func (w *Weaver) promptCycle(ctx context.Context, logger *slog.Logger, m model.Model, req PromptRequest) (*story.Part, string, error) {
	last, err := w.store.LastPart(ctx, req.WeavingID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: loading story part: %w", ErrStorage, err)
	}

	part := &story.Part{}
	if last != nil {
		part = last.Clone()
	}

	// Recompute defensively: stored counts may have drifted from the
	// tokenizer in use.
	part.Recount(w.counter)

	capacity := m.ContextTokens()
	if len(part.Messages) > 0 && part.ContextTokens >= capacity {
		return part, "", fmt.Errorf("%w: story part holds %d tokens against a %d token window",
			provider.ErrContextLength, part.ContextTokens, capacity)
	}

	// Rollover is consulted before the user turn is appended. It only
	// fires when both a policy and a summarizer are configured.
	increment := false
	if w.summarizer != nil && w.policy.ShouldRollover(m, part) {
		summary, err := w.summarizer.Summarize(ctx, part)
		if err != nil {
			return part, "", fmt.Errorf("weaver: summarizing story part: %w", err)
		}

		fresh := &story.Part{Players: slices.Clone(part.Players)}
		fresh.Append(summary, w.counter.Count(summary.Content))
		logger.Info("story part rolled over",
			"prior_tokens", part.ContextTokens,
			"summary_tokens", fresh.ContextTokens,
		)
		part = fresh
		increment = true
	}

	// The response budget is computed from the pre-append snapshot, not
	// including the turn being added: intentional extra headroom on top
	// of the divide-by-3 policy.
	priorTokens := part.ContextTokens

	displayName := ctxweave.ComposeUsername(req.Username, req.PseudoUsername)
	userMsg := story.Message{
		Role:      story.RoleUser,
		AccountID: req.AccountID,
		Username:  displayName,
		Content:   req.Message,
		Timestamp: time.Now().UTC(),
	}

	payload, err := w.assembler.Assemble(req.System, part, userMsg, w.counter.Count(req.Message), displayName)
	if err != nil {
		return part, "", err
	}

	maxWords := m.ResponseWordBudget(priorTokens, req.MaxWords)

	// Request-only scaffolding: the budget instruction is sent to the
	// model but never persisted into the story.
	payload = append(payload, provider.Message{
		Role:    provider.MessageRoleSystem,
		Content: fmt.Sprintf("Respond with %d words or less", maxWords),
	})

	resp, err := w.llm.Complete(ctx, provider.CompletionRequest{
		Model:            string(m),
		Messages:         payload,
		MaxTokens:        maxResponseTokens,
		Temperature:      f64ptr(temperature),
		PresencePenalty:  f64ptr(presencePenalty),
		FrequencyPenalty: f64ptr(frequencyPenalty),
	})
	if err != nil {
		return part, "", fmt.Errorf("%w: %w", ErrPromptFailed, err)
	}

	reply, ok := firstChoiceContent(resp)
	if !ok {
		return part, "", ErrNoContent
	}

	part.Append(story.Message{
		Role:      story.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	}, w.counter.Count(reply))

	if err := w.store.SavePart(ctx, req.WeavingID, *part, increment); err != nil {
		return part, "", fmt.Errorf("%w: saving story part: %w", ErrStorage, err)
	}

	return part, reply, nil
}

// firstChoiceContent extracts the first completion choice's text.
// Reports false when no choice carries content.
func firstChoiceContent(resp provider.CompletionResponse) (string, bool) {
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", false
	}
	return resp.Choices[0].Content, true
}

func f64ptr(v float64) *float64 { return &v }
