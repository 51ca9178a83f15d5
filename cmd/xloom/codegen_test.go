package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateMain_NoPlugins(t *testing.T) {
	var buf bytes.Buffer
	if err := GenerateMain(&buf, CodegenParams{}); err != nil {
		t.Fatalf("GenerateMain error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"github.com/loreweaver/loom/pkg/app"`) {
		t.Error("missing loom/pkg/app import")
	}
	if !strings.Contains(out, "app.Run(app.RunParams{") {
		t.Error("missing app.Run call")
	}
	// Should not have any blank imports.
	if strings.Contains(out, `_ "`) {
		t.Error("unexpected blank import in output without plugins")
	}
}

func TestGenerateMain_WithPlugins(t *testing.T) {
	var buf bytes.Buffer
	err := GenerateMain(&buf, CodegenParams{
		PluginPkgs: []string{"github.com/example/plugin"},
	})
	if err != nil {
		t.Fatalf("GenerateMain error: %v", err)
	}

	if !strings.Contains(buf.String(), `_ "github.com/example/plugin"`) {
		t.Errorf("missing plugin import in:\n%s", buf.String())
	}
}

func TestGenerateMain_WithFirstParty(t *testing.T) {
	var buf bytes.Buffer
	err := GenerateMain(&buf, CodegenParams{
		FirstPartyPkgs: []string{"github.com/loreweaver/loom/modules/storage/sqlite"},
	})
	if err != nil {
		t.Fatalf("GenerateMain error: %v", err)
	}

	if !strings.Contains(buf.String(), `_ "github.com/loreweaver/loom/modules/storage/sqlite"`) {
		t.Errorf("missing first-party import in:\n%s", buf.String())
	}
}

func TestGenerateMain_Combined(t *testing.T) {
	var buf bytes.Buffer
	err := GenerateMain(&buf, CodegenParams{
		FirstPartyPkgs: []string{"github.com/loreweaver/loom/internal/gateway"},
		PluginPkgs:     []string{"github.com/example/custom"},
	})
	if err != nil {
		t.Fatalf("GenerateMain error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "internal/gateway") {
		t.Error("missing first-party module")
	}
	if !strings.Contains(out, "example/custom") {
		t.Error("missing plugin module")
	}
}
