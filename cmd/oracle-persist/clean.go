package main

import (
	"github.com/spf13/cobra"

	"github.com/withObsrvr/oracle-persist/internal/logging"
)

// newCleanCmd returns the clean command. It is a placeholder that only logs;
// imported rows do not record the file they came from.
func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove imported rows (not implemented)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Component("main").Info("clean is not implemented, nothing to do")
			return nil
		},
	}
}
