package weaver

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	ctxweave "github.com/loreweaver/loom/internal/context"
	"github.com/loreweaver/loom/internal/core"
	"github.com/loreweaver/loom/internal/model"
	"github.com/loreweaver/loom/internal/provider"
	"github.com/loreweaver/loom/internal/story"
	"github.com/loreweaver/loom/internal/tokens"
)

func init() {
	core.RegisterModule(&Engine{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Engine)(nil)
	_ core.Configurable = (*Engine)(nil)
	_ core.Provisioner  = (*Engine)(nil)
	_ core.Validator    = (*Engine)(nil)
)

// Engine is the "weaver" module: it assembles the Weaver from services
// registered by the provider, storage, and gateway modules and publishes
// it as "weaver.engine".
type Engine struct {
	config Config
	weaver *Weaver
}

// Config is the weaver module's YAML configuration.
type Config struct {
	// Model selects the active model by catalog name or alias
	// ("gpt3", "gpt4"). Defaults to gpt3.
	Model string `yaml:"model"`

	// Tokenizer selects the counting strategy: "bpe" (default) or
	// "heuristic".
	Tokenizer string `yaml:"tokenizer"`

	// Encoding overrides the BPE encoding. Empty means the active
	// model's catalog encoding.
	Encoding string `yaml:"encoding"`

	// CharsPerToken is the heuristic tokenizer's ratio. Zero selects
	// the built-in default.
	CharsPerToken float64 `yaml:"chars_per_token"`

	// SystemName overrides the display name on system-role story entries.
	SystemName string `yaml:"system_name"`

	// RolloverRatio is the part-full threshold as a fraction of the
	// context window. Zero selects the default.
	RolloverRatio float64 `yaml:"rollover_ratio"`

	// Models registers additional model variants before Model is resolved.
	Models []ModelConfig `yaml:"models"`
}

// ModelConfig declares a custom model variant in the catalog.
type ModelConfig struct {
	Name          string `yaml:"name"`
	ContextTokens int    `yaml:"context_tokens"`
	Encoding      string `yaml:"encoding"`
}

func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = "gpt3"
	}
	if c.Tokenizer == "" {
		c.Tokenizer = "bpe"
	}
}

// ModuleInfo implements core.Module.
func (e *Engine) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "weaver",
		New: func() core.Module { return &Engine{} },
	}
}

// Configure implements core.Configurable.
func (e *Engine) Configure(node *yaml.Node) error {
	if err := node.Decode(&e.config); err != nil {
		return err
	}
	e.config.defaults()
	return nil
}

// Provision implements core.Provisioner. The module ID "weaver" sorts
// after every provider.*, storage.*, and gateway.* ID in the deterministic
// load order, so their services are already registered here.
func (e *Engine) Provision(ctx *core.AppContext) error {
	for _, mc := range e.config.Models {
		if err := model.Register(model.Descriptor{
			Name:          model.Model(mc.Name),
			ContextTokens: mc.ContextTokens,
			Encoding:      mc.Encoding,
		}); err != nil {
			return fmt.Errorf("weaver: registering model: %w", err)
		}
	}

	m, err := model.Parse(e.config.Model)
	if err != nil {
		return fmt.Errorf("weaver: %w", err)
	}

	counter, err := e.buildCounter(m)
	if err != nil {
		return err
	}

	svc, ok := ctx.Service("provider.llm")
	if !ok {
		return errors.New("weaver: no LLM provider module is configured")
	}
	llm, ok := svc.(provider.Provider)
	if !ok {
		return fmt.Errorf("weaver: service provider.llm has unexpected type %T", svc)
	}

	var store story.Store
	if svc, ok := ctx.Service("storage.parts"); ok {
		store, ok = svc.(story.Store)
		if !ok {
			return fmt.Errorf("weaver: service storage.parts has unexpected type %T", svc)
		}
	} else {
		ctx.Logger.Warn("no storage module configured, story parts are held in memory only")
		store = story.NewMemoryStore()
	}

	var observer Observer
	if svc, ok := ctx.Service("gateway.metrics"); ok {
		if obs, ok := svc.(Observer); ok {
			observer = obs
		}
	}

	assembler := ctxweave.NewAssembler()
	if e.config.SystemName != "" {
		assembler.SystemName = e.config.SystemName
	}

	e.weaver, err = New(Options{
		Provider:  llm,
		Counter:   counter,
		Models:    StaticModelSource{Model: m},
		Store:     store,
		Assembler: assembler,
		Policy:    ThresholdPolicy{Ratio: e.config.RolloverRatio},
		Observer:  observer,
		Logger:    ctx.Logger,
	})
	if err != nil {
		return err
	}

	ctx.RegisterService("weaver.engine", e.weaver)
	ctx.RegisterService("weaver.lanes", e.weaver.Lanes())

	ctx.Logger.Info("weaver ready",
		"model", string(m),
		"tokenizer", e.config.Tokenizer,
		"context_tokens", m.ContextTokens(),
	)
	return nil
}

func (e *Engine) buildCounter(m model.Model) (tokens.Counter, error) {
	switch e.config.Tokenizer {
	case "bpe":
		encoding := e.config.Encoding
		if encoding == "" {
			encoding = m.Encoding()
		}
		counter, err := tokens.NewBPE(encoding)
		if err != nil {
			return nil, fmt.Errorf("weaver: %w", err)
		}
		return counter, nil
	case "heuristic":
		return tokens.NewCharCounter(e.config.CharsPerToken), nil
	default:
		return nil, fmt.Errorf("weaver: unknown tokenizer %q", e.config.Tokenizer)
	}
}

// Validate implements core.Validator.
func (e *Engine) Validate() error {
	if e.config.RolloverRatio < 0 || e.config.RolloverRatio > 1 {
		return errors.New("weaver: rollover_ratio must be within [0, 1]")
	}
	if e.config.CharsPerToken < 0 {
		return errors.New("weaver: chars_per_token must not be negative")
	}
	return nil
}
