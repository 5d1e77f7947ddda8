package runtime

// Event is a user interaction fed into the controller.
type Event interface {
	event()
}

// SelectCategory picks a root reason on the category step.
type SelectCategory struct {
	Value string
}

// SelectSubcategory picks a refinement on the subcategory step.
type SelectSubcategory struct {
	Value string
}

// SubmitNotes sends the free-text notes from the text input step.
type SubmitNotes struct {
	Notes string
}

// Acknowledge presses the close button of the confirmation or dead-end panel.
type Acknowledge struct{}

// Close dismisses the dialog from any step.
type Close struct{}

func (SelectCategory) event()    {}
func (SelectSubcategory) event() {}
func (SubmitNotes) event()       {}
func (Acknowledge) event()       {}
func (Close) event()             {}
