// Package app provides the shared entry point for loomd and for custom
// binaries composed by xloom.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/loreweaver/loom/internal/config"
	"github.com/loreweaver/loom/internal/core"
	"github.com/loreweaver/loom/internal/security"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level

	// BuildHash identifies the plugin set compiled into a custom binary,
	// injected by xloom via ldflags. Empty for stock loomd builds.
	BuildHash string
}

// Run loads configuration, starts all configured modules, and blocks until
// a shutdown signal is received.
func Run(params RunParams) error {
	a, err := Build(params)
	if err != nil {
		return err
	}
	return a.Run()
}

// Build loads and validates configuration, then provisions every configured
// module. The returned App has not been started.
func Build(params RunParams) (*core.App, error) {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	// Wrap the text handler in a redacting handler so provider credentials
	// never reach log output.
	redactor := security.NewRedactor()
	redactor.AddLiteral(os.Getenv("OPENAI_API_KEY"))
	innerHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: params.LogLevel,
	})
	logger := slog.New(security.NewRedactingHandler(innerHandler, redactor))

	if params.BuildHash != "" {
		logger.Info("custom build", "hash", params.BuildHash)
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	a := core.NewApp(appCtx)
	if err := a.LoadModules(config.Resolve(cfg)); err != nil {
		return nil, err
	}
	return a, nil
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/loom/loom.yaml → ~/.config/loom/loom.yaml
// → ./loom.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "loom", "loom.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "loom", "loom.yaml"))
	}

	candidates = append(candidates, "loom.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the persistent data directory, honouring
// $XDG_DATA_HOME when set and falling back to ~/.local/share/loom.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "loom")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "loom")
}
