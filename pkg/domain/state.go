package domain

// FlowState is the controller-owned snapshot of the flow.
// It is mutated only through the controller's transition function.
type FlowState struct {
	Step             Step   `json:"step"`
	CategoryValue    string `json:"category_value"`
	SubcategoryValue string `json:"subcategory_value,omitempty"`
}

// NewFlowState returns the state of a freshly opened dialog.
// The empty category value matches the catalog placeholder.
func NewFlowState() FlowState {
	return FlowState{Step: StepCategory}
}

// Status mirrors the externally tracked submission status.
type Status string

const (
	StatusIdle      Status = "idle"      // Nothing submitted yet
	StatusWaiting   Status = "waiting"   // Submission in flight
	StatusError     Status = "error"     // Last submission failed
	StatusConfirmed Status = "confirmed" // Backend accepted the report
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusWaiting, StatusError, StatusConfirmed:
		return true
	}
	return false
}

// DefaultReportType selects the instructional copy when none is given.
const DefaultReportType = "project"
