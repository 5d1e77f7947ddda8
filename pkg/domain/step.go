package domain

import "fmt"

// Step identifies a stage of the report flow.
type Step string

const (
	StepCategory     Step = "category"
	StepSubcategory  Step = "subcategory"
	StepTextInput    Step = "text_input"
	StepConfirmation Step = "confirmation"
)

// Index returns the position of the step in the linear progression.
// Hosts that draw a progress indicator address steps by number.
func (s Step) Index() int {
	switch s {
	case StepCategory:
		return 0
	case StepSubcategory:
		return 1
	case StepTextInput:
		return 2
	case StepConfirmation:
		return 3
	}
	return -1
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	return s.Index() >= 0
}

// ParseStep converts a string into a Step.
func ParseStep(v string) (Step, error) {
	s := Step(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown step %q", v)
	}
	return s, nil
}
