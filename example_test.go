package reportflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/reportflow"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/i18n"
	"github.com/aretw0/reportflow/pkg/ports"
)

// ExampleNew walks a report through every step with a submitter that
// confirms synchronously.
func ExampleNew() {
	submit := ports.SubmitterFunc(func(ctx context.Context, r domain.Report, notify ports.StatusFunc) error {
		fmt.Printf("sent category=%s notes=%q\n", r.ReportCategory, r.Notes)
		return notify(ctx, domain.StatusConfirmed)
	})

	engine, err := reportflow.New(
		reportflow.WithSubmitter(submit),
		reportflow.WithIDGenerator(func() string { return "demo" }),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	bundle := i18n.Default()

	_, view, err := engine.Open(ctx, "comment")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(bundle.Text(view.Title))

	view, _ = engine.SelectCategory(ctx, "demo", "5")
	fmt.Println(view.Step)

	view, _ = engine.SelectSubcategory(ctx, "demo", "8")
	fmt.Println(view.Step)

	view, err = engine.SubmitNotes(ctx, "demo", "This comment shares my home address.")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(view.Step)

	if err := engine.Acknowledge(ctx, "demo"); err != nil {
		log.Fatal(err)
	}
	// Output:
	// Report Comment
	// subcategory
	// text_input
	// sent category=5 notes="This comment shares my home address."
	// confirmation
}
