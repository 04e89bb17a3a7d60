package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"smsledger/internal/domain/heuristic"
	"smsledger/internal/domain/ingest"
	"smsledger/internal/domain/rule"
	"smsledger/internal/domain/transaction"
)

func newParseCmd(opts *options) *cobra.Command {
	var (
		sender     string
		rulesFile  string
		noFallback bool
		minLength  int
	)

	cmd := &cobra.Command{
		Use:   "parse [message]",
		Short: "Parse one message and print the extracted record",
		Long: `Parse one message and print the extracted record as JSON.
Pass "-" to read the message from stdin. Nothing is stored.`,
		Example: `  smsledger parse --sender VM-HDFCBK "Rs.500 debited from your HDFC A/c XX1234 to SWIGGY"
  smsledger parse --rules my_rules.yaml --no-fallback - < message.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := args[0]
			if message == "-" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				message = strings.TrimSpace(string(raw))
			}
			if message == "" {
				return ingest.ErrEmptyMessage
			}

			log := opts.logger(cmd)
			loc, err := opts.loc()
			if err != nil {
				return err
			}

			var rules rule.RuleSource
			if rulesFile != "" {
				doc, err := readRuleDocument(rulesFile)
				if err != nil {
					return err
				}
				rules = rule.NewStore(nil, doc, log)
			} else {
				fs, err := opts.store()
				if err != nil {
					return err
				}
				rules = opts.ruleStore(fs, log)
			}

			builder := transaction.NewBuilder()
			svc := ingest.NewService(
				rule.NewEngine(rules, builder, loc, log),
				heuristic.NewClassifier(builder),
				nil, nil,
				ingest.Config{LegacyFallback: !noFallback, MinMessageLength: minLength},
				log,
			)

			out, err := svc.Classify(cmd.Context(), ingest.InboundMessage{Sender: sender, Body: message})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&sender, "sender", "s", "", "Sender address the message came from")
	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "Rule document (JSON or YAML) to use instead of the saved rules")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "Disable the heuristic classifier")
	cmd.Flags().IntVar(&minLength, "min-length", ingest.DefaultMinMessageLength, "Messages shorter than this many characters are skipped")

	return cmd
}
