package loam

// CategoryMetadata is the frontmatter of one category document.
type CategoryMetadata struct {
	Value         string                `json:"value" mapstructure:"value"`
	Label         string                `json:"label" mapstructure:"label"`
	Prompt        string                `json:"prompt" mapstructure:"prompt"`
	Subcategories []SubcategoryMetadata `json:"subcategories" mapstructure:"subcategories"`
}

type SubcategoryMetadata struct {
	Value             string `json:"value" mapstructure:"value"`
	Label             string `json:"label" mapstructure:"label"`
	Prompt            string `json:"prompt" mapstructure:"prompt"`
	PreventSubmission bool   `json:"prevent_submission" mapstructure:"prevent_submission"`
}
