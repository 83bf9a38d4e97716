package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kernwater/wqloader/wellnumber"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize ID...",
		Short: "Print the canonical form of well identifiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, wellnumber.Normalize(id))
			}
			return nil
		},
	}
}
