package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"smsledger/internal/shared/auth"
)

func newAdminKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "admin-key [key]",
		Short: "Print the ADMIN_KEY_HASH value for a key",
		Long: `Print the bcrypt hash the API server expects in ADMIN_KEY_HASH.
Without an argument a random key is generated and printed first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				var err error
				if key, err = auth.GenerateAdminKey(); err != nil {
					return err
				}
				fmt.Fprintf(out, "ADMIN_KEY=%s\n", key)
			}

			hash, err := auth.HashAdminKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "ADMIN_KEY_HASH=%s\n", hash)
			return nil
		},
	}
}
