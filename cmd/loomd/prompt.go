package main

import (
	"fmt"

	"github.com/loreweaver/loom/pkg/weave"
	"github.com/spf13/cobra"
)

func promptCmd() *cobra.Command {
	var (
		server    string
		token     string
		system    string
		weavingID string
		username  string
		pseudo    string
		accountID uint64
		maxWords  int
	)

	cmd := &cobra.Command{
		Use:   "prompt <message>",
		Short: "Send one prompt to a running loomd instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := weave.NewClient(server)
			client.Token = token

			resp, err := client.Prompt(cmd.Context(), weave.PromptRequest{
				System:         system,
				WeavingID:      weavingID,
				Message:        args[0],
				AccountID:      accountID,
				Username:       username,
				PseudoUsername: pseudo,
				MaxWords:       maxWords,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Reply)
			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "http://127.0.0.1:8080", "Base URL of the loomd gateway")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")
	cmd.Flags().StringVar(&system, "system", "", "System directive for the story")
	cmd.Flags().StringVarP(&weavingID, "weaving", "w", "", "Weaving identifier (required)")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Display name attached to the turn")
	cmd.Flags().StringVar(&pseudo, "pseudo", "", "Pseudo username suffix")
	cmd.Flags().Uint64Var(&accountID, "account", 0, "Account identifier")
	cmd.Flags().IntVar(&maxWords, "max-words", 0, "Override the computed response word budget")
	_ = cmd.MarkFlagRequired("weaving")
	return cmd
}
