package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"smsledger/internal/domain/rule"
	"smsledger/internal/domain/transaction"
	"smsledger/internal/infrastructure/filestore"
	"smsledger/internal/shared/logger"
)

// options are the flags shared by every subcommand.
type options struct {
	dataDir  string
	location string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "smsledger",
		Short: "Extract bank transactions from SMS messages",
		Long: `smsledger parses bank SMS and notification text into pending transactions.

It runs the same rule engine and heuristic fallback as the API server against
a local data directory holding the pending list and the rule override.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.dataDir, "data-dir", "d", defaultDataDir(), "Directory holding the pending list and rule override")
	root.PersistentFlags().StringVar(&opts.location, "location", rule.DefaultLocation, "Time zone message dates are read in")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine activity to stderr")

	root.AddCommand(
		newParseCmd(opts),
		newImportCmd(opts),
		newRulesCmd(opts),
		newPendingCmd(opts),
		newAdminKeyCmd(),
	)

	return root
}

func defaultDataDir() string {
	if dir := os.Getenv("SMSLEDGER_DATA_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "smsledger")
	}
	return ".smsledger"
}

func (o *options) logger(cmd *cobra.Command) zerolog.Logger {
	if !o.verbose {
		return logger.Nop()
	}
	return logger.NewWithWriter(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).Level(zerolog.DebugLevel)
}

func (o *options) store() (*filestore.Store, error) {
	return filestore.New(o.dataDir)
}

func (o *options) loc() (*time.Location, error) {
	loc, err := time.LoadLocation(o.location)
	if err != nil {
		return nil, fmt.Errorf("invalid --location %q: %w", o.location, err)
	}
	return loc, nil
}

// ruleStore returns the rules saved in the data directory, falling back to
// the bundled document.
func (o *options) ruleStore(fs *filestore.Store, log zerolog.Logger) *rule.Store {
	return rule.NewStore(filestore.NewRuleRepository(fs), rule.BundledDocument(), log)
}

func (o *options) pendingService(fs *filestore.Store, log zerolog.Logger) *transaction.PendingService {
	return transaction.NewPendingService(filestore.NewPendingRepository(fs), nil, log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
