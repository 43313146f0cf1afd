package main

import (
	"math"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the plugin version",

	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("hostfactory plugin %s (%s)\n", version, commit[:int(math.Min(float64(len(commit)), 7))])

		stats := runtime.Discovered
		cmd.Printf("handlers: %d commands, %d queries across %d modules\n",
			stats.CommandHandlers, stats.QueryHandlers, stats.Modules)
		return nil
	},
}
