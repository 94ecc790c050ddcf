package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/celengan/internal/reply"
	"github.com/spf13/cobra"
)

func sayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "say <message>",
		Short: "Send one message to a session",
		Long: `Send a single message to an existing session and print the reply.

Useful for scripting and for driving celengan from another chat front end:
create a session with "celengan session new", then pass its ID here.`,
		Example: `  celengan say --session $SID "beli kopi 25rb"
  celengan say --session $SID --json ya`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSay,
	}

	cmd.Flags().String("session", "", "session ID (required)")
	cmd.Flags().String("user", defaultUser(), "ledger owner")
	cmd.Flags().Bool("json", false, "print the reply with its metadata as JSON")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

type sayOutput struct {
	SessionID string         `json:"session_id"`
	Text      string         `json:"text"`
	Metadata  reply.Metadata `json:"metadata"`
}

func runSay(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	userID, _ := cmd.Flags().GetString("user")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	resp, err := a.engine.HandleMessage(ctx, sessionID, userID, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to handle message: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sayOutput{SessionID: sessionID, Text: resp.Text, Metadata: resp.Metadata})
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
	return nil
}
