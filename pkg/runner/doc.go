/*
Package runner drives a report session from a terminal or a pipe.

It is the bridge between a ports.FlowEngine and a line-oriented stream: each
step is written out through an IOHandler and each line read back is turned
into the matching engine call.

# Key Components

  - Runner: the loop that opens a session and walks it to the end.
  - TextHandler: value-typed prompts for humans, optionally
    rendered as markdown.
  - JSONHandler: one JSON object per view for scripted hosts.
  - SanitizeInput: the size, UTF-8 and control-character gate every host
    applies to user text.

# Usage

	r := runner.New(
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout, bundle)),
		runner.WithReportType("comment"),
	)
	if err := r.Run(ctx, engine); err != nil {
		log.Fatal(err)
	}

Select steps take the choice value (for example "5"); an empty line keeps
the placeholder and surfaces the required-field message. "exit" or "quit"
closes the dialog from any step.
*/
package runner
