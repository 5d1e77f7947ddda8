package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the reason table and its messages",
	Long: `Loads the configured reason table, which fails on duplicate values or a
missing placeholder, and reports every message ID it uses that the message
bundle does not define.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		c, err := cfg.catalog(cmd.Context())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		bundle, err := cfg.bundle()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if missing := bundle.Missing(c); len(missing) > 0 {
			for _, id := range missing {
				fmt.Fprintf(out, "missing message: %s\n", id)
			}
			return fmt.Errorf("validation failed: %d missing messages", len(missing))
		}
		fmt.Fprintf(out, "Catalog is valid: %d categories\n", c.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
