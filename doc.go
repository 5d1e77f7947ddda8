/*
Package reportflow drives the "report content" dialog: pick a reason, refine
it, describe the problem, send it.

The flow is a small deterministic state machine over four steps

	category -> subcategory -> text_input -> confirmation

driven by a declarative table of report reasons (see pkg/catalog). Reasons
without refinements skip the subcategory step, and a refinement flagged as
preventing submission turns the last step into an instructional dead end
that can only be closed.

# Concept

The Engine owns the flow state of every open dialog and renders it into a
presentation-neutral domain.View. Hosts draw the view and feed user events
back. Delivery of the finished report is delegated to a ports.Submitter,
which pushes the waiting, error and confirmed statuses back through the
StatusFunc it receives. A confirmed status forces the confirmation step.

Hosts shipped with the module:

  - pkg/runner: interactive terminal runner.
  - pkg/adapters/http: JSON API with server-sent session updates.
  - pkg/adapters/mcp: Model Context Protocol tools.

# Usage

	engine, err := reportflow.New(
		reportflow.WithSubmitter(submission.NewDispatcher(
			submission.NewHTTPSubmitter("https://example.com/reports"),
		)),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	s, view, err := engine.Open(ctx, "project")
	if err != nil {
		log.Fatal(err)
	}

	view, err = engine.SelectCategory(ctx, s.ID, "0")
	// view.Step == domain.StepTextInput: "0" has no refinements.

	view, err = engine.SubmitNotes(ctx, s.ID, "Copied from someone else's project.")
	// view.Waiting is true until the dispatcher reports back.

Message ids in the view resolve to text through pkg/i18n.
*/
package reportflow
