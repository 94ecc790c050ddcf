package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/parser"
	"github.com/Veraticus/celengan/internal/reply"
	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <message>",
		Short: "Show what the parser extracts from a message",
		Long: `Normalize a message and list the amounts, labels and date the parser
finds in it. Nothing is classified or saved; pass --intent to see the
statement that intent would produce.`,
		Example: `  celengan parse "bayar kos 1.2 juta"
  celengan parse --intent savings_goal "mau nabung 5 juta buat laptop desember"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}

	cmd.Flags().String("intent", "", "extract a statement for this intent (income, expense, savings_goal)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	intentFlag, _ := cmd.Flags().GetString("intent")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newParser(cfg.Parser)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	normalized := parser.Normalize(strings.Join(args, " "))
	now := time.Now()
	lang := model.ParseLanguage(cfg.Engine.Language)

	fmt.Fprintf(out, "normalized: %q\n", normalized)
	for _, a := range p.Amounts(normalized) {
		fmt.Fprintf(out, "amount:     %s (%s %q, confidence %.2f)\n",
			reply.FormatAmount(lang, a.Value), a.Kind, a.Raw, a.Confidence())
	}
	for _, span := range p.Vocabulary().Match(normalized) {
		fmt.Fprintf(out, "label:      %s [%s]\n", span.Label, span.Group)
	}
	if date, ok := parser.ExtractDate(normalized, now, false); ok {
		fmt.Fprintf(out, "date:       %s\n", reply.FormatDate(lang, date))
	}

	if intentFlag == "" {
		return nil
	}
	intent, ok := model.ParseIntent(intentFlag)
	if !ok {
		return fmt.Errorf("unknown intent %q", intentFlag)
	}

	stmt, err := p.Extract(normalized, intent, now)
	if err != nil && !errors.Is(err, parser.ErrNoAmount) {
		return err
	}
	printStatement(out, lang, stmt)
	if errors.Is(err, parser.ErrNoAmount) {
		fmt.Fprintln(out, "missing:    amount")
	}
	return nil
}

func printStatement(w io.Writer, lang model.Language, s model.Statement) {
	fmt.Fprintf(w, "intent:     %s\n", s.Intent)
	if s.Amount > 0 {
		fmt.Fprintf(w, "statement:  %s", reply.FormatAmount(lang, s.Amount))
	} else {
		fmt.Fprint(w, "statement:  -")
	}
	if label := s.Label(); label != "" {
		fmt.Fprintf(w, " %s (confidence %.2f)", label, s.LabelConfidence)
	}
	if s.TargetDate != nil {
		fmt.Fprintf(w, " on %s", reply.FormatDate(lang, *s.TargetDate))
	}
	fmt.Fprintln(w)
}
