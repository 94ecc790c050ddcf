package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/celengan/internal/classification"
	"github.com/Veraticus/celengan/internal/parser"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <message>",
		Short: "Ask the configured classifier about a message",
		Long: `Send a message through the classification gateway and print the label,
its confidence and whether the backend degraded. Useful for checking a
remote backend and its threshold before chatting.`,
		Example: `  celengan classify "dapet 50rb dari freelance"
  celengan classify --kind category "keluar 15rb buat token"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().String("kind", string(classification.KindIntent), "classifier to ask (intent, category, query)")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	kindFlag, _ := cmd.Flags().GetString("kind")
	kind, err := classification.ParseKind(kindFlag)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	gateway, err := newGateway(ctx, cfg.Classifier)
	if err != nil {
		return err
	}
	defer func() { _ = gateway.Close() }()

	text := parser.Normalize(strings.Join(args, " "))
	result := gateway.Classify(ctx, text, kind)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "backend:    %s\n", cfg.Classifier.Backend)
	fmt.Fprintf(out, "label:      %s\n", result.Label)
	fmt.Fprintf(out, "confidence: %.2f (threshold %.2f)\n", result.Confidence, gateway.Threshold())
	if result.Degraded {
		fmt.Fprintln(out, "degraded:   yes")
	}
	return nil
}
