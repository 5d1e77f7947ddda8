package domain

// SessionDiff represents the changes between two session snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Step             *Step   `json:"step,omitempty"`
	CategoryValue    *string `json:"category_value,omitempty"`
	SubcategoryValue *string `json:"subcategory_value,omitempty"`
	Status           *Status `json:"status,omitempty"`
	Closed           *bool   `json:"closed,omitempty"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil, it returns a diff representing the entire newSession (initial load).
// Returns nil when nothing changed.
func Diff(oldSession, newSession *Session) *SessionDiff {
	if newSession == nil {
		return nil
	}

	diff := &SessionDiff{SessionID: newSession.ID}
	n := newSession

	if oldSession == nil || oldSession.Flow.Step != n.Flow.Step {
		diff.Step = &n.Flow.Step
	}
	if oldSession == nil || oldSession.Flow.CategoryValue != n.Flow.CategoryValue {
		diff.CategoryValue = &n.Flow.CategoryValue
	}
	if oldSession == nil {
		if n.Flow.SubcategoryValue != "" {
			diff.SubcategoryValue = &n.Flow.SubcategoryValue
		}
	} else if oldSession.Flow.SubcategoryValue != n.Flow.SubcategoryValue {
		diff.SubcategoryValue = &n.Flow.SubcategoryValue
	}
	if oldSession == nil || oldSession.Status != n.Status {
		diff.Status = &n.Status
	}
	if oldSession == nil {
		if n.Closed {
			diff.Closed = &n.Closed
		}
	} else if oldSession.Closed != n.Closed {
		diff.Closed = &n.Closed
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.Step == nil &&
		d.CategoryValue == nil &&
		d.SubcategoryValue == nil &&
		d.Status == nil &&
		d.Closed == nil
}
