package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"smsledger/internal/domain/transaction"
)

func newPendingCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Manage transactions awaiting confirmation",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the pending list as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fs, err := opts.store()
				if err != nil {
					return err
				}
				records, err := opts.pendingService(fs, opts.logger(cmd)).List(cmd.Context())
				if err != nil {
					return err
				}
				if records == nil {
					records = []*transaction.Record{}
				}
				return printJSON(cmd.OutOrStdout(), records)
			},
		},
		&cobra.Command{
			Use:   "remove [id]",
			Short: "Drop one pending transaction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fs, err := opts.store()
				if err != nil {
					return err
				}
				rec, err := opts.pendingService(fs, opts.logger(cmd)).Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s %s)\n", rec.ID, rec.Type, transaction.FormatAmount(rec.Amount))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Drop every pending transaction",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fs, err := opts.store()
				if err != nil {
					return err
				}
				n, err := opts.pendingService(fs, opts.logger(cmd)).Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d pending transactions\n", n)
				return nil
			},
		},
	)

	return cmd
}
