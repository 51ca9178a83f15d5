package main

import (
	"fmt"
	"slices"

	"github.com/kardianos/service"
	"github.com/loreweaver/loom/internal/core"
	"github.com/loreweaver/loom/pkg/app"
	"github.com/spf13/cobra"
)

var serviceActions = []string{"install", "uninstall", "start", "stop", "restart", "run"}

func serviceCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:       "service <action>",
		Short:     "Manage loomd as a system service",
		Long:      "Install, control or run loomd under the platform service manager (systemd, launchd, Windows services).",
		Args:      cobra.ExactArgs(1),
		ValidArgs: serviceActions,
		RunE: func(_ *cobra.Command, args []string) error {
			action := args[0]
			if !slices.Contains(serviceActions, action) {
				return fmt.Errorf("unknown action %q (choose from %v)", action, serviceActions)
			}

			svcArgs := []string{"service", "run"}
			if cfgPath != "" {
				svcArgs = append(svcArgs, "--config", cfgPath)
			}

			svc, err := service.New(&program{cfgPath: cfgPath}, &service.Config{
				Name:        "loomd",
				DisplayName: "loom context engine",
				Description: "Token-budgeted conversational context engine for LLM storytelling.",
				Arguments:   svcArgs,
			})
			if err != nil {
				return err
			}

			if action == "run" {
				return svc.Run()
			}
			if err := service.Control(svc, action); err != nil {
				return err
			}
			fmt.Printf("service %s: ok\n", action)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to configuration file")
	return cmd
}

// program adapts the module app to the kardianos service lifecycle.
type program struct {
	cfgPath string
	app     *core.App
}

func (p *program) Start(_ service.Service) error {
	a, err := app.Build(app.RunParams{ConfigPath: p.cfgPath})
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	p.app = a
	return nil
}

func (p *program) Stop(_ service.Service) error {
	if p.app != nil {
		p.app.Stop()
		p.app = nil
	}
	return nil
}
