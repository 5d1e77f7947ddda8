package main

import (
	"fmt"

	"github.com/aretw0/reportflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of reportflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reportflow version %s\n", reportflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
