package main

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/wh40k-terms/internal/app"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printLine(cmd, "%s", app.BuildVersion())
			return nil
		},
	}
}
