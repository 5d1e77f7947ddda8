package domain

// PanelKind tells the host which kind of step body to draw.
type PanelKind string

const (
	PanelSelect       PanelKind = "select"       // Category or subcategory picker
	PanelForm         PanelKind = "form"         // Notes text area with submit
	PanelDeadEnd      PanelKind = "dead_end"     // Instructions with close only
	PanelConfirmation PanelKind = "confirmation" // Report received
)

// FieldKind is the widget type of a field.
type FieldKind string

const (
	FieldSelect   FieldKind = "select"
	FieldTextArea FieldKind = "textarea"
)

// Choice is one option of a select field.
type Choice struct {
	Value string     `json:"value"`
	Label MessageRef `json:"label"`
}

// Field describes the input widget of a step.
type Field struct {
	Name      string     `json:"name"`
	Kind      FieldKind  `json:"kind"`
	Required  bool       `json:"required"`
	MinLength int        `json:"min_length,omitempty"`
	MaxLength int        `json:"max_length,omitempty"`
	Choices   []Choice   `json:"choices,omitempty"`
	Messages  FieldTexts `json:"messages"`
}

// FieldTexts holds the validation messages a field can surface.
type FieldTexts struct {
	Required  MessageRef `json:"required"`
	MinLength MessageRef `json:"min_length,omitempty"`
	MaxLength MessageRef `json:"max_length,omitempty"`
}

// View is the host-facing description of the current step.
type View struct {
	SessionID string    `json:"session_id"`
	Step      Step      `json:"step"`
	Progress  int       `json:"progress"`
	Panel     PanelKind `json:"panel"`

	Title  MessageRef  `json:"title"`
	Banner *MessageRef `json:"banner,omitempty"`

	// Instructions is set on the category step; Header and Prompt on the others.
	Instructions *MessageRef `json:"instructions,omitempty"`
	Header       *MessageRef `json:"header,omitempty"`
	Prompt       *MessageRef `json:"prompt,omitempty"`

	Field *Field `json:"field,omitempty"`

	NextLabel     MessageRef `json:"next_label"`
	SubmitEnabled bool       `json:"submit_enabled"`
	Waiting       bool       `json:"waiting"`

	// Errors maps field names to the validation message currently shown inline.
	Errors map[string]MessageRef `json:"errors,omitempty"`
}
