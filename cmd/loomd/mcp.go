package main

import (
	"context"
	"fmt"

	"github.com/loreweaver/loom/internal/story"
	"github.com/loreweaver/loom/internal/weaver"
	"github.com/loreweaver/loom/pkg/app"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func mcpCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the weaving engine as an MCP stdio server",
		Long:  "Start the configured modules and expose prompt weaving as a Model Context Protocol tool over stdin/stdout.",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := app.Build(app.RunParams{ConfigPath: cfgPath})
			if err != nil {
				return err
			}
			if err := a.Start(); err != nil {
				return err
			}
			defer a.Stop()

			svc, ok := a.Context().Service("weaver.engine")
			if !ok {
				return fmt.Errorf("weaver module is not configured")
			}
			engine, ok := svc.(*weaver.Weaver)
			if !ok {
				return fmt.Errorf("service weaver.engine has unexpected type %T", svc)
			}

			return server.ServeStdio(newMCPServer(engine))
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to configuration file")
	return cmd
}

func newMCPServer(engine *weaver.Weaver) *server.MCPServer {
	s := server.NewMCPServer("loom", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	tool := mcp.NewTool("loom_prompt",
		mcp.WithDescription("Submit one conversational turn to a weaving and return the model's reply. History, token budgeting and persistence are handled server-side."),
		mcp.WithString("weaving_id",
			mcp.Required(),
			mcp.Description("Key of the conversation lineage to continue"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user's turn text"),
		),
		mcp.WithString("system",
			mcp.Description("System directive for the story"),
		),
		mcp.WithString("username",
			mcp.Description("Display name attached to the turn"),
		),
		mcp.WithString("pseudo_username",
			mcp.Description("Suffix appended to username to form the effective display name"),
		),
		mcp.WithNumber("account_id",
			mcp.Description("Numeric account identifier of the participant"),
		),
		mcp.WithNumber("max_words",
			mcp.Description("Override the computed response word budget"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		weavingID, err := req.RequireString("weaving_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		message, err := req.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		reply, err := engine.Prompt(ctx, weaver.PromptRequest{
			System:         req.GetString("system", ""),
			WeavingID:      story.Key(weavingID),
			Message:        message,
			AccountID:      story.AccountID(req.GetInt("account_id", 0)),
			Username:       req.GetString("username", ""),
			PseudoUsername: req.GetString("pseudo_username", ""),
			MaxWords:       req.GetInt("max_words", 0),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(reply), nil
	})

	return s
}
