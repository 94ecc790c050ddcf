package main

import (
	"fmt"

	"github.com/Veraticus/celengan/internal/cli"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/spf13/cobra"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage conversation sessions",
	}

	cmd.AddCommand(sessionNewCmd())
	cmd.AddCommand(sessionClearCmd())
	cmd.AddCommand(sessionPendingCmd())

	return cmd
}

func sessionNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a session and print its ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, _ := cmd.Flags().GetString("user")
			return withApp(cmd, func(a *app) error {
				id, err := a.engine.CreateSession(cmd.Context(), userID)
				if err != nil {
					return fmt.Errorf("failed to create session: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	cmd.Flags().String("user", defaultUser(), "ledger owner")
	return cmd
}

func sessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <session-id>",
		Short: "Delete a session and anything still pending in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := a.engine.ClearSession(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to clear session: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Session cleared"))
				return nil
			})
		},
	}
}

func sessionPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending <session-id>",
		Short: "Show the entry waiting for confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				pa, err := a.engine.GetPendingAction(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to get pending action: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderPending(model.ParseLanguage(a.cfg.Engine.Language), pa))
				return nil
			})
		},
	}
}

// withApp runs fn against a freshly opened app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(*app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	return fn(a)
}
