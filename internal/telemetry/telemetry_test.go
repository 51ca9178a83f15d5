package telemetry

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func configure(t *testing.T, raw string) *Module {
	t.Helper()
	m := &Module{}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("parsing test yaml: %v", err)
	}
	if err := m.Configure(&node); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return m
}

func TestConfigure_Defaults(t *testing.T) {
	t.Parallel()

	m := configure(t, "{}")
	if m.config.ServiceName != "loom" {
		t.Fatalf("service name = %q, want loom", m.config.ServiceName)
	}
}

func TestValidate_SampleRatio(t *testing.T) {
	t.Parallel()

	if err := configure(t, "sample_ratio: 1.2").Validate(); err == nil {
		t.Fatal("expected error for ratio above 1")
	}
	if err := configure(t, "sample_ratio: -0.1").Validate(); err == nil {
		t.Fatal("expected error for negative ratio")
	}
	if err := configure(t, "sample_ratio: 0.25").Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStop_WithoutProvision(t *testing.T) {
	t.Parallel()

	m := &Module{}
	if err := m.Stop(t.Context()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
