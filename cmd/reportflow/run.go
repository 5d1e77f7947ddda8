package main

import (
	"os"

	"github.com/aretw0/reportflow"
	"github.com/aretw0/reportflow/internal/presentation/tui"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill in a report interactively",
	Long: `Runs the report dialog in the terminal.
Type the value shown next to a reason to pick it, "exit" to close the dialog.
With --json, each step is written as one JSON object per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reportType, _ := cmd.Flags().GetString("type")
		jsonMode, _ := cmd.Flags().GetBool("json")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		a, err := newApp(cmd, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer a.Close()

		var handler runner.IOHandler
		if jsonMode {
			handler = runner.NewJSONHandler(os.Stdin, os.Stdout, a.bundle)
		} else {
			var opts []runner.TextHandlerOption
			if runner.IsTerminal(os.Stdout) {
				if !noBanner {
					tui.PrintBanner(os.Stdout, reportflow.Version)
				}
				opts = append(opts, runner.WithTextHandlerRenderer(tui.NewRenderer(0)))
			}
			handler = runner.NewTextHandler(os.Stdin, os.Stdout, a.bundle, opts...)
		}

		r := runner.New(
			runner.WithHandler(handler),
			runner.WithLogger(a.logger),
			runner.WithReportType(reportType),
			runner.WithSignals(true),
		)
		return r.Run(cmd.Context(), a.engine)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("type", "t", domain.DefaultReportType, "What is being reported: project, comment or studio")
	runCmd.Flags().Bool("json", false, "Use JSON-lines input and output")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")
}
