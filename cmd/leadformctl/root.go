package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "leadformctl",
		Short:         "Inspect lead forms and the submission journal",
		SilenceUsage: true,
	}

	root.AddCommand(
		newRenderCmd(),
		newValidateCmd(),
		newPayloadCmd(),
		newJournalCmd(),
		newTokenCmd(),
	)
	return root
}
