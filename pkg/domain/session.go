package domain

import "time"

// Session is one open report dialog.
// Closing and reopening the dialog creates a new Session.
type Session struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Flow      FlowState `json:"flow"`
	Status    Status    `json:"status"`
	Closed    bool      `json:"closed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted session when an encrypting store sits
	// in front of the backend. Flow and Type are empty in that case.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates a session at the category step.
func NewSession(id, reportType string) *Session {
	if reportType == "" {
		reportType = DefaultReportType
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Type:      reportType,
		Flow:      NewFlowState(),
		Status:    StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a copy of the session.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Touch bumps the update timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}
