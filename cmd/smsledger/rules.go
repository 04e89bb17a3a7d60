package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smsledger/internal/domain/rule"
)

func newRulesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and replace the parsing rules",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the active rules in evaluation order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fs, err := opts.store()
				if err != nil {
					return err
				}
				snap := opts.ruleStore(fs, opts.logger(cmd)).Rules(cmd.Context())
				if snap.LoadErr != nil {
					return snap.LoadErr
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "source: %s\n", snap.Source)
				writeRuleReport(out, snap.RuleNames(), snap.Skipped, snap.Inactive)
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate [file]",
			Short: "Check a JSON or YAML rule document without saving it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := readRuleDocument(args[0])
				if err != nil {
					return err
				}
				result, err := rule.Validate(doc)
				if err != nil {
					return err
				}

				names := make([]string, len(result.Rules))
				for i, r := range result.Rules {
					names[i] = r.Name
				}
				writeRuleReport(cmd.OutOrStdout(), names, result.Skipped, result.Inactive)
				return nil
			},
		},
		&cobra.Command{
			Use:   "push [file]",
			Short: "Save a JSON or YAML rule document as the active rules",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := readRuleDocument(args[0])
				if err != nil {
					return err
				}
				result, err := rule.Validate(doc)
				if err != nil {
					return err
				}
				if len(result.Rules) == 0 {
					return errors.New("rule document has no usable rules, not saving")
				}

				fs, err := opts.store()
				if err != nil {
					return err
				}
				snap, err := opts.ruleStore(fs, opts.logger(cmd)).SaveNewRules(cmd.Context(), doc)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d rules (%d skipped) to %s\n", len(snap.Rules), len(snap.Skipped), fs.Dir())
				return nil
			},
		},
	)

	return cmd
}

func writeRuleReport(w io.Writer, names []string, skipped []*rule.EntryError, inactive int) {
	fmt.Fprintf(w, "loaded: %d, skipped: %d, inactive: %d\n", len(names), len(skipped), inactive)
	for i, name := range names {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, name)
	}
	for _, e := range skipped {
		fmt.Fprintf(w, "  skipped: %v\n", e)
	}
}
