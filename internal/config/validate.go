package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/loreweaver/loom/internal/core"
)

// Validate checks the structural validity of a Config.
// It verifies the version field, ensures modules are present, checks that
// all referenced module IDs exist in the registry, and enforces that at
// most one storage module is enabled (the weaver binds exactly one story
// store; a second would silently shadow the first).
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	var storage []string
	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
		if strings.HasPrefix(id, "storage.") {
			storage = append(storage, id)
		}
	}

	if len(storage) > 1 {
		sort.Strings(storage)
		errs = append(errs, fmt.Errorf("config: multiple storage modules configured (%s), enable exactly one", strings.Join(storage, ", ")))
	}

	return errors.Join(errs...)
}
