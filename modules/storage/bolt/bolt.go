// Package bolt implements the storage.bolt module: an embedded key/value
// story.Store backed by go.etcd.io/bbolt. A lighter alternative to the
// SQLite module for single-process deployments.
package bolt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"

	"github.com/loreweaver/loom/internal/core"
	"github.com/loreweaver/loom/internal/story"
)

const defaultDBFile = "loom.bolt"

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ story.Store       = (*partStore)(nil)
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Config holds the bolt storage module configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/loom.bolt.
	Path string `yaml:"path"`

	// Timeout bounds the wait for the file lock on open. Defaults to 1s.
	Timeout time.Duration `yaml:"timeout"`
}

func (c *Config) defaults() {
	if c.Timeout == 0 {
		c.Timeout = time.Second
	}
}

// Module wires a bbolt database into the story storage contract.
type Module struct {
	config Config
	db     *bbolt.DB
	logger *slog.Logger
	store  *partStore
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "storage.bolt",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("bolt: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("bolt: create directory %s: %w", dir, err)
		}
	}

	db, err := bbolt.Open(m.config.Path, 0o600, &bbolt.Options{Timeout: m.config.Timeout})
	if err != nil {
		return fmt.Errorf("bolt: open %s: %w", m.config.Path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return fmt.Errorf("bolt: create root bucket: %w", err)
	}

	m.db = db
	m.store = &partStore{db: db}

	ctx.RegisterService("storage.parts", m.store)

	m.logger.Info("bolt storage provisioned", "path", m.config.Path)
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("bolt storage stopping")
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Store returns the story.Store implementation.
func (m *Module) Store() story.Store {
	return m.store
}
