package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/loreweaver/loom/internal/cert"
)

// Plugin identifies a third-party Go module to include in the build.
type Plugin struct {
	ModulePath string
	Version    string
	Signature  []byte // optional Ed25519 signature for certification
}

// String returns the module@version representation.
func (p Plugin) String() string {
	if p.Version != "" {
		return p.ModulePath + "@" + p.Version
	}
	return p.ModulePath
}

// BuildRequest contains all parameters for building a custom loom binary.
type BuildRequest struct {
	Plugins     []Plugin
	OnlyIDs     []string
	OutputPath  string
	GoPath      string
	LoomVersion string // Go module version for loom (e.g. "v0.1.0", "latest")

	// CertVerifier is an optional plugin verifier. When non-nil, each plugin
	// must pass signature verification before it is included in the build.
	CertVerifier *cert.Verifier
}

// Build generates and compiles a custom loom binary with the given plugins.
func Build(ctx context.Context, req BuildRequest) error {
	tmpDir, err := os.MkdirTemp("", "xloom-build-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	// Determine which first-party packages to include.
	firstParty := DefaultModules
	if len(req.OnlyIDs) > 0 {
		firstParty = filterModules(DefaultModules, req.OnlyIDs)
	}

	// Verify plugin signatures when a cert verifier is configured.
	if req.CertVerifier != nil {
		for _, p := range req.Plugins {
			if err := req.CertVerifier.Verify(p.String(), p.Signature); err != nil {
				return fmt.Errorf("plugin %s: certification failed: %w", p.ModulePath, err)
			}
		}
	}

	pluginPkgs := make([]string, len(req.Plugins))
	pluginStrings := make([]string, len(req.Plugins))
	for i, p := range req.Plugins {
		pluginPkgs[i] = p.ModulePath
		pluginStrings[i] = p.String()
	}
	hash := buildHash(pluginStrings)

	// Generate main.go.
	mainPath := filepath.Join(tmpDir, "main.go")
	f, err := os.Create(mainPath)
	if err != nil {
		return fmt.Errorf("creating main.go: %w", err)
	}
	if err := GenerateMain(f, CodegenParams{
		FirstPartyPkgs: firstParty,
		PluginPkgs:     pluginPkgs,
	}); err != nil {
		_ = f.Close()
		return fmt.Errorf("generating main.go: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing main.go: %w", err)
	}

	loomVer := req.LoomVersion
	if loomVer == "" {
		loomVer = "latest"
	}
	if err := generateGoMod(tmpDir, req.Plugins, loomVer); err != nil {
		return fmt.Errorf("generating go.mod: %w", err)
	}

	goCmd := req.GoPath
	if goCmd == "" {
		goCmd = "go"
	}

	tidy := exec.CommandContext(ctx, goCmd, "mod", "tidy")
	tidy.Dir = tmpDir
	tidy.Stdout = os.Stdout
	tidy.Stderr = os.Stderr
	if err := tidy.Run(); err != nil {
		return fmt.Errorf("go mod tidy failed: %w", err)
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = "loomd"
	}
	outputAbs, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}

	ldflags := fmt.Sprintf("-s -w -X main.buildHash=%s", hash)
	build := exec.CommandContext(ctx, goCmd, "build", "-ldflags", ldflags, "-o", outputAbs, ".")
	build.Dir = tmpDir
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		return fmt.Errorf("go build failed: %w", err)
	}

	fmt.Printf("Built %s (hash: %s)\n", outputAbs, hash[:12])
	return nil
}

func generateGoMod(dir string, plugins []Plugin, loomVersion string) error {
	var b strings.Builder
	b.WriteString("module loom-custom\n\n")
	b.WriteString("go 1.25.0\n\n")
	b.WriteString("require (\n")
	fmt.Fprintf(&b, "\tgithub.com/loreweaver/loom %s\n", loomVersion)
	for _, p := range plugins {
		if p.Version != "" {
			fmt.Fprintf(&b, "\t%s %s\n", p.ModulePath, p.Version)
		}
	}
	b.WriteString(")\n")

	return os.WriteFile(filepath.Join(dir, "go.mod"), []byte(b.String()), 0o644)
}

// buildHash returns a deterministic SHA-256 hex digest for the given plugin
// list. The list is sorted before hashing so the result is order-independent.
func buildHash(plugins []string) string {
	sorted := slices.Clone(plugins)
	slices.Sort(sorted)

	h := sha256.New()
	for _, p := range sorted {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// parsePlugins converts "module@version" strings into Plugin structs.
func parsePlugins(raw []string) []Plugin {
	plugins := make([]Plugin, len(raw))
	for i, s := range raw {
		if idx := strings.LastIndex(s, "@"); idx > 0 {
			plugins[i] = Plugin{ModulePath: s[:idx], Version: s[idx+1:]}
		} else {
			plugins[i] = Plugin{ModulePath: s}
		}
	}
	return plugins
}

// filterModules returns only modules whose import paths contain one of the
// given IDs. This is a simple contains check to allow --only to work with
// partial module IDs.
func filterModules(all []string, onlyIDs []string) []string {
	var result []string
	for _, mod := range all {
		for _, id := range onlyIDs {
			if strings.Contains(mod, id) {
				result = append(result, mod)
				break
			}
		}
	}
	return result
}
