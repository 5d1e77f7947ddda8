package domain

// MessageRef points at a localizable message.
type MessageRef struct {
	ID string `json:"id" yaml:"id" mapstructure:"id"`
}

// Msg is a shorthand constructor for MessageRef.
func Msg(id string) MessageRef {
	return MessageRef{ID: id}
}

// IsZero reports whether the reference is empty.
func (m MessageRef) IsZero() bool {
	return m.ID == ""
}
