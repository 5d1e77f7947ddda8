package runtime

import (
	"fmt"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/form"
)

// Message IDs used by the flow chrome.
const (
	MsgNext           = "general.next"
	MsgClose          = "general.close"
	MsgSend           = "report.send"
	MsgError          = "report.error"
	MsgReasonMissing  = "report.reasonMissing"
	MsgTextMissing    = "report.textMissing"
	MsgTooShort       = "report.tooShortError"
	MsgTooLong        = "report.tooLongError"
	MsgReceivedHeader = "report.receivedHeader"
	MsgReceivedBody   = "report.receivedBody"
)

// TitleMessage returns the dialog title for a report type.
func TitleMessage(reportType string) domain.MessageRef {
	return domain.Msg("report." + reportType)
}

// InstructionsMessage returns the category step instructions for a report type.
func InstructionsMessage(reportType string) domain.MessageRef {
	return domain.Msg(fmt.Sprintf("report.%sInstructions", reportType))
}

func categoryField(cats []domain.Category) domain.Field {
	opts := make([]domain.Choice, 0, len(cats))
	for _, c := range cats {
		opts = append(opts, domain.Choice{Value: c.Value, Label: c.Label})
	}
	return form.Select(form.FieldCategory, opts, domain.Msg(MsgReasonMissing))
}

// The subcategory picker reuses the "category" field name.
func subcategoryField(cat domain.Category) domain.Field {
	opts := make([]domain.Choice, 0, len(cat.Subcategories))
	for _, s := range cat.Subcategories {
		opts = append(opts, domain.Choice{Value: s.Value, Label: s.Label})
	}
	return form.Select(form.FieldCategory, opts, domain.Msg(MsgReasonMissing))
}
func notesField() domain.Field {
	return form.TextArea(form.FieldNotes, form.NotesMinLength, form.NotesMaxLength, domain.FieldTexts{
		Required:  domain.Msg(MsgTextMissing),
		MinLength: domain.Msg(MsgTooShort),
		MaxLength: domain.Msg(MsgTooLong),
	})
}

// Render builds the view of a session.
// A catalog lookup miss is a programmer error and is returned as such.
func Render(c *domain.Catalog, s *domain.Session) (domain.View, error) {
	step := EffectiveStep(s.Flow, s.Status)
	v := domain.View{
		SessionID: s.ID,
		Step:      step,
		Progress:  step.Index(),
		Title:     TitleMessage(s.Type),
	}
	if s.Status == domain.StatusError {
		banner := domain.Msg(MsgError)
		v.Banner = &banner
	}

	switch step {
	case domain.StepCategory:
		instructions := InstructionsMessage(s.Type)
		field := categoryField(c.Categories())
		v.Panel = domain.PanelSelect
		v.Instructions = &instructions
		v.Field = &field
		v.NextLabel = domain.Msg(MsgNext)

	case domain.StepSubcategory:
		cat, ok := c.Find(s.Flow.CategoryValue)
		if !ok {
			return v, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, s.Flow.CategoryValue)
		}
		field := subcategoryField(cat)
		v.Panel = domain.PanelSelect
		v.Header = &cat.Label
		v.Prompt = &cat.Prompt
		v.Field = &field
		v.NextLabel = domain.Msg(MsgNext)

	case domain.StepTextInput:
		sub, err := EffectiveSubcategory(c, s.Flow)
		if err != nil {
			return v, err
		}
		v.Header = &sub.Label
		v.Prompt = &sub.Prompt
		if sub.PreventSubmission {
			v.Panel = domain.PanelDeadEnd
			v.NextLabel = domain.Msg(MsgClose)
			v.SubmitEnabled = true
			break
		}
		field := notesField()
		v.Panel = domain.PanelForm
		v.Field = &field
		v.NextLabel = domain.Msg(MsgSend)
		v.Waiting = s.Status == domain.StatusWaiting

	case domain.StepConfirmation:
		header := domain.Msg(MsgReceivedHeader)
		body := domain.Msg(MsgReceivedBody)
		v.Panel = domain.PanelConfirmation
		v.Header = &header
		v.Prompt = &body
		v.NextLabel = domain.Msg(MsgClose)
		v.SubmitEnabled = true

	default:
		return v, fmt.Errorf("unknown step %q", step)
	}

	return v, nil
}
