package main

import (
	"fmt"

	"github.com/akeren/waitlist-api/pkg/referral"
	"github.com/spf13/cobra"
)

func codeCmd() *cobra.Command {
	var (
		count  int
		length int
	)

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Print freshly generated referral codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("count must be positive, got %d", count)
			}
			for range count {
				fmt.Fprintln(cmd.OutOrStdout(), referral.GenerateCode(length))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of codes to print")
	cmd.Flags().IntVarP(&length, "length", "l", referral.DefaultLength, "characters per code")

	return cmd
}
