package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"smsledger/internal/domain/heuristic"
	"smsledger/internal/domain/ingest"
	"smsledger/internal/domain/rule"
	"smsledger/internal/domain/transaction"
	"smsledger/internal/infrastructure/filestore"
	"smsledger/internal/infrastructure/smsbackup"
)

// importSummary counts what happened to each replayed message.
type importSummary struct {
	Total    int `json:"total"`
	Rule     int `json:"rule"`
	Legacy   int `json:"legacy"`
	Filtered int `json:"filtered"`
	NoMatch  int `json:"noMatch"`
}

func (s *importSummary) add(out ingest.Outcome) {
	s.Total++
	switch {
	case out.Path == ingest.PathRule:
		s.Rule++
	case out.Path == ingest.PathLegacy:
		s.Legacy++
	case out.Skipped == ingest.SkipFiltered:
		s.Filtered++
	default:
		s.NoMatch++
	}
}

func newImportCmd(opts *options) *cobra.Command {
	var (
		sender     string
		from       string
		csvPath    string
		noFallback bool
	)

	cmd := &cobra.Command{
		Use:   "import [backup.xml]",
		Short: "Replay an SMS backup export into the pending list",
		Long: `Replay every message of an SMS backup export (<smses><sms address body date/>)
through the parser. Matches are appended to the pending list in the data
directory and can optionally be written to a CSV file.`,
		Example: `  smsledger import backup.xml
  smsledger import backup.xml --sender VM-HDFCBK --from 2024-01-01 --csv hdfc.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd)
			loc, err := opts.loc()
			if err != nil {
				return err
			}

			filter := smsbackup.Filter{Sender: sender}
			if from != "" {
				filter.From, err = time.ParseInLocation("2006-01-02", from, loc)
				if err != nil {
					return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
				}
			}

			backup, err := smsbackup.ReadFile(args[0])
			if err != nil {
				return err
			}

			fs, err := opts.store()
			if err != nil {
				return err
			}

			builder := transaction.NewBuilder()
			engine := rule.NewEngine(opts.ruleStore(fs, log), builder, loc, log)
			var fallback ingest.Classifier
			if !noFallback {
				fallback = heuristic.NewClassifier(builder)
			}
			service := ingest.NewService(engine, fallback, filestore.NewPendingRepository(fs), nil, ingest.Config{
				LegacyFallback: !noFallback,
			}, log)

			var (
				summary importSummary
				matched []*transaction.Record
			)
			for _, msg := range backup.Messages(filter) {
				out, err := service.Process(cmd.Context(), msg)
				if err != nil {
					if errors.Is(err, ingest.ErrEmptyMessage) {
						continue
					}
					return err
				}
				summary.add(out)
				if out.Matched() {
					matched = append(matched, out.Record)
				}
			}

			if csvPath != "" {
				if err := writeCSVFile(csvPath, matched, loc); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d messages (rule: %d, legacy: %d, filtered: %d, no match: %d)\n",
				summary.Rule+summary.Legacy, summary.Total, summary.Rule, summary.Legacy, summary.Filtered, summary.NoMatch)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sender, "sender", "s", "", "Only replay messages from this sender address")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Only replay messages from this date onwards (YYYY-MM-DD)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also write the extracted records to this CSV file")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "Disable the heuristic classifier")

	return cmd
}

func writeCSVFile(path string, records []*transaction.Record, loc *time.Location) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := smsbackup.WriteCSV(f, records, loc); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return f.Close()
}
