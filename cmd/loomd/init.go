package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively generate a loom.yaml configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(output); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", output)
			}

			answers := initAnswers{
				Model:   "gpt3",
				Bind:    "127.0.0.1:8080",
				Storage: "sqlite",
			}
			if err := initForm(&answers).Run(); err != nil {
				return err
			}

			cfg := renderConfig(answers)
			if err := os.WriteFile(output, []byte(cfg), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "loom.yaml", "Path for the generated configuration")
	return cmd
}

type initAnswers struct {
	APIKey      string
	Model       string
	Bind        string
	Storage     string
	BearerToken string
	Telemetry   bool
}

func initForm(a *initAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API key").
				Description("Leave empty to read from $OPENAI_API_KEY at runtime").
				EchoMode(huh.EchoModePassword).
				Value(&a.APIKey),
			huh.NewSelect[string]().
				Title("Model").
				Options(
					huh.NewOption("gpt-3.5-turbo (4096 tokens)", "gpt3"),
					huh.NewOption("gpt-4 (8192 tokens)", "gpt4"),
				).
				Value(&a.Model),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Gateway bind address").
				Value(&a.Bind),
			huh.NewInput().
				Title("Bearer token for /status").
				Description("Leave empty to disable the status endpoint").
				Value(&a.BearerToken),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Story storage").
				Options(
					huh.NewOption("SQLite", "sqlite"),
					huh.NewOption("Bolt", "bolt"),
					huh.NewOption("In-memory only", "memory"),
				).
				Value(&a.Storage),
			huh.NewConfirm().
				Title("Enable OpenTelemetry tracing?").
				Value(&a.Telemetry),
		),
	)
}

func renderConfig(a initAnswers) string {
	var b strings.Builder
	b.WriteString("version: \"1\"\n\nmodules:\n")

	b.WriteString("  weaver:\n")
	fmt.Fprintf(&b, "    model: %s\n", a.Model)

	b.WriteString("  provider.openai:\n")
	if a.APIKey != "" {
		fmt.Fprintf(&b, "    api_key: %q\n", a.APIKey)
	} else {
		b.WriteString("    api_key: ${OPENAI_API_KEY}\n")
	}
	modelName := "gpt-3.5-turbo"
	if a.Model == "gpt4" {
		modelName = "gpt-4"
	}
	fmt.Fprintf(&b, "    model: %s\n", modelName)

	b.WriteString("  gateway.http:\n")
	fmt.Fprintf(&b, "    bind: %q\n", a.Bind)
	if a.BearerToken != "" {
		b.WriteString("    auth:\n")
		fmt.Fprintf(&b, "      bearer_token: %q\n", a.BearerToken)
	}

	switch a.Storage {
	case "sqlite":
		b.WriteString("  storage.sqlite: {}\n")
		b.WriteString("  maintenance.cron: {}\n")
	case "bolt":
		b.WriteString("  storage.bolt: {}\n")
	}

	if a.Telemetry {
		b.WriteString("  telemetry.otel:\n")
		b.WriteString("    endpoint: localhost:4318\n")
		b.WriteString("    insecure: true\n")
	}

	return b.String()
}
