package runtime

import (
	"fmt"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/form"
)

// Outcome is the result of a transition.
type Outcome struct {
	// State is the flow state after the event.
	State domain.FlowState

	// Submit carries the packaged report when the event was a valid submission.
	Submit *domain.Report

	// Close is set when the dialog should be closed by the caller.
	Close bool
}

// EffectiveStep returns the step to display.
// A confirmed submission forces the confirmation step whatever the internal step is.
func EffectiveStep(s domain.FlowState, status domain.Status) domain.Step {
	if status == domain.StatusConfirmed {
		return domain.StepConfirmation
	}
	return s.Step
}

// EffectiveSubcategory returns the subcategory driving the final step's copy:
// the chosen subcategory, or the category itself when it has none.
func EffectiveSubcategory(c *domain.Catalog, s domain.FlowState) (domain.Subcategory, error) {
	cat, ok := c.Find(s.CategoryValue)
	if !ok {
		return domain.Subcategory{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, s.CategoryValue)
	}
	if s.SubcategoryValue != "" {
		if sub, ok := cat.FindSubcategory(s.SubcategoryValue); ok {
			return sub, nil
		}
	}
	return cat.AsSubcategory(), nil
}

// IsDeadEnd reports whether the text input step is replaced by the
// instructional panel for the given state.
func IsDeadEnd(c *domain.Catalog, s domain.FlowState) bool {
	if s.Step != domain.StepTextInput {
		return false
	}
	sub, err := EffectiveSubcategory(c, s)
	return err == nil && sub.PreventSubmission
}

// Transition applies ev to s. It is pure: it never mutates its inputs and
// performs no I/O. Field validation failures return *form.ValidationError
// and leave the state unchanged.
func Transition(c *domain.Catalog, s domain.FlowState, status domain.Status, ev Event) (Outcome, error) {
	out := Outcome{State: s}
	step := EffectiveStep(s, status)

	switch e := ev.(type) {
	case Close:
		out.Close = true
		return out, nil

	case Acknowledge:
		if step == domain.StepConfirmation || IsDeadEnd(c, s) {
			out.Close = true
			return out, nil
		}
		return out, invalid(ev, step)

	case SelectCategory:
		if step != domain.StepCategory {
			return out, invalid(ev, step)
		}
		if err := form.Validate(categoryField(c.Categories()), e.Value); err != nil {
			return out, err
		}
		cat, ok := c.Find(e.Value)
		if !ok {
			return out, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, e.Value)
		}
		out.State.CategoryValue = cat.Value
		out.State.SubcategoryValue = ""
		if cat.HasSubcategories() {
			out.State.Step = domain.StepSubcategory
		} else {
			out.State.Step = domain.StepTextInput
		}
		return out, nil

	case SelectSubcategory:
		if step != domain.StepSubcategory {
			return out, invalid(ev, step)
		}
		cat, ok := c.Find(s.CategoryValue)
		if !ok {
			return out, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, s.CategoryValue)
		}
		if err := form.Validate(subcategoryField(cat), e.Value); err != nil {
			return out, err
		}
		sub, ok := cat.FindSubcategory(e.Value)
		if !ok {
			return out, fmt.Errorf("%w: %q in category %q", domain.ErrUnknownSubcategory, e.Value, cat.Value)
		}
		out.State.SubcategoryValue = sub.Value
		out.State.Step = domain.StepTextInput
		return out, nil

	case SubmitNotes:
		if step != domain.StepTextInput {
			return out, invalid(ev, step)
		}
		if IsDeadEnd(c, s) {
			return out, domain.ErrSubmissionPrevented
		}
		if status == domain.StatusWaiting {
			return out, domain.ErrSubmissionPending
		}
		if err := form.Validate(notesField(), e.Notes); err != nil {
			return out, err
		}
		// The subcategory is intentionally left out of the payload.
		out.Submit = &domain.Report{
			ReportCategory: s.CategoryValue,
			Notes:          e.Notes,
		}
		return out, nil
	}

	return out, fmt.Errorf("unsupported event %T", ev)
}

func invalid(ev Event, step domain.Step) error {
	return fmt.Errorf("%w: %T at %s", domain.ErrInvalidTransition, ev, step)
}
