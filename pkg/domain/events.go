package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter    EventType = "step_enter"
	EventDeadEnd      EventType = "dead_end"
	EventSubmit       EventType = "submit"
	EventStatusChange EventType = "status_change"
	EventClose        EventType = "close"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent reports entry into a step (or into the dead-end panel).
type StepEvent struct {
	EventBase
	Step             Step   `json:"step"`
	CategoryValue    string `json:"category_value"`
	SubcategoryValue string `json:"subcategory_value,omitempty"`
}

// SubmitEvent reports a packaged report handed to the submitter.
type SubmitEvent struct {
	EventBase
	Report Report `json:"report"`
	Err    error  `json:"-"`
}

// StatusEvent reports an externally pushed status change.
type StatusEvent struct {
	EventBase
	From Status `json:"from"`
	To   Status `json:"to"`
}

// CloseEvent reports the dialog being closed.
type CloseEvent struct {
	EventBase
	Step Step `json:"step"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter    func(context.Context, *StepEvent)
	OnDeadEnd      func(context.Context, *StepEvent)
	OnSubmit       func(context.Context, *SubmitEvent)
	OnStatusChange func(context.Context, *StatusEvent)
	OnClose        func(context.Context, *CloseEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:    chain(h.OnStepEnter, other.OnStepEnter),
		OnDeadEnd:      chain(h.OnDeadEnd, other.OnDeadEnd),
		OnSubmit:       chain(h.OnSubmit, other.OnSubmit),
		OnStatusChange: chain(h.OnStatusChange, other.OnStatusChange),
		OnClose:        chain(h.OnClose, other.OnClose),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
