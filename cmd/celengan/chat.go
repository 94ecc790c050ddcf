package main

import (
	"fmt"

	"github.com/Veraticus/celengan/internal/cli"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: `Chat with celengan in everyday Indonesian.

Tell it what came in or went out ("dapet 50rb dari freelance",
"bayar kos 1.2 juta") and confirm with "ya". Ask "saldo aku berapa?"
for a summary. Resume an earlier conversation with --session.`,
		RunE: runChat,
	}

	cmd.Flags().String("session", "", "resume an existing session")
	cmd.Flags().String("user", defaultUser(), "ledger owner")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	userID, _ := cmd.Flags().GetString("user")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.OutOrStdout())
	ctx, cancel := handler.HandleInterrupts(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	if sessionID == "" {
		sessionID, err = a.engine.CreateSession(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
	}
	handler.SetSession(sessionID)

	chat := cli.NewChat(a.engine, cmd.InOrStdin(), cmd.OutOrStdout(), sessionID, userID, model.ParseLanguage(cfg.Engine.Language))
	return chat.Run(ctx)
}
