package domain

import (
	"encoding/json"
	"fmt"
)

// Category is a top-level report reason.
type Category struct {
	Value         string        `json:"value" yaml:"value" mapstructure:"value"`
	Label         MessageRef    `json:"label" yaml:"label" mapstructure:"label"`
	Prompt        MessageRef    `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
	Subcategories []Subcategory `json:"subcategories" yaml:"subcategories" mapstructure:"subcategories"`
}

// Subcategory refines a Category.
// PreventSubmission turns the final step into an instructional dead end.
type Subcategory struct {
	Value             string     `json:"value" yaml:"value" mapstructure:"value"`
	Label             MessageRef `json:"label" yaml:"label" mapstructure:"label"`
	Prompt            MessageRef `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
	PreventSubmission bool       `json:"prevent_submission,omitempty" yaml:"prevent_submission,omitempty" mapstructure:"prevent_submission"`
}

// AsSubcategory returns the category viewed as its own effective subcategory.
// Used when a category has no subcategories.
func (c Category) AsSubcategory() Subcategory {
	return Subcategory{
		Value:  c.Value,
		Label:  c.Label,
		Prompt: c.Prompt,
	}
}

// HasSubcategories reports whether selecting the category leads to a subcategory step.
func (c Category) HasSubcategories() bool {
	return len(c.Subcategories) > 0
}

// FindSubcategory looks up a subcategory by value.
func (c Category) FindSubcategory(value string) (Subcategory, bool) {
	for _, s := range c.Subcategories {
		if s.Value == value {
			return s, true
		}
	}
	return Subcategory{}, false
}

// Catalog is the validated, ordered table of report reasons.
// It is immutable once built; accessors return copies.
type Catalog struct {
	categories []Category
}

// NewCatalog validates the given table and returns an immutable Catalog.
func NewCatalog(categories []Category) (*Catalog, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}
	return &Catalog{categories: cloneCategories(categories)}, nil
}

// MustCatalog is like NewCatalog but panics on an invalid table.
// Intended for package-level built-in tables.
func MustCatalog(categories []Category) *Catalog {
	c, err := NewCatalog(categories)
	if err != nil {
		panic(err)
	}
	return c
}

// Categories returns a copy of the ordered table.
func (c *Catalog) Categories() []Category {
	return cloneCategories(c.categories)
}

// Len returns the number of root entries, placeholder included.
func (c *Catalog) Len() int {
	return len(c.categories)
}

// Find looks up a category by value.
func (c *Catalog) Find(value string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.Value == value {
			return cloneCategory(cat), true
		}
	}
	return Category{}, false
}

// MarshalJSON encodes the table as an ordered list.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.categories)
}

// Placeholder returns the "no selection" entry (always first).
func (c *Catalog) Placeholder() Category {
	return cloneCategory(c.categories[0])
}

func validateCategories(categories []Category) error {
	if len(categories) == 0 {
		return ErrEmptyCatalog
	}
	if categories[0].Value != "" {
		return fmt.Errorf("%w: first entry has value %q", ErrMissingPlaceholder, categories[0].Value)
	}

	seen := make(map[string]bool, len(categories))
	for i, cat := range categories {
		if seen[cat.Value] {
			return fmt.Errorf("%w: category value %q", ErrDuplicateValue, cat.Value)
		}
		seen[cat.Value] = true

		if err := validateMessages(fmt.Sprintf("category[%d]", i), cat.Label, cat.Prompt); err != nil {
			return err
		}
		if cat.Value == "" && len(cat.Subcategories) > 0 {
			return fmt.Errorf("%w: placeholder cannot have subcategories", ErrInvalidCatalog)
		}
		if err := validateSubcategories(cat); err != nil {
			return err
		}
	}
	return nil
}

func validateSubcategories(cat Category) error {
	seen := make(map[string]bool, len(cat.Subcategories))
	for i, sub := range cat.Subcategories {
		if seen[sub.Value] {
			return fmt.Errorf("%w: subcategory value %q in category %q", ErrDuplicateValue, sub.Value, cat.Value)
		}
		seen[sub.Value] = true

		if sub.Value == "" && i != 0 {
			return fmt.Errorf("%w: placeholder of category %q must be first", ErrInvalidCatalog, cat.Value)
		}
		if sub.Value == "" && sub.PreventSubmission {
			return fmt.Errorf("%w: placeholder of category %q cannot prevent submission", ErrInvalidCatalog, cat.Value)
		}
		where := fmt.Sprintf("category %q subcategory[%d]", cat.Value, i)
		if err := validateMessages(where, sub.Label, sub.Prompt); err != nil {
			return err
		}
	}
	if len(cat.Subcategories) == 1 && cat.Subcategories[0].Value == "" {
		return fmt.Errorf("%w: category %q lists only a placeholder subcategory", ErrInvalidCatalog, cat.Value)
	}
	return nil
}

func validateMessages(where string, label, prompt MessageRef) error {
	if label.IsZero() {
		return fmt.Errorf("%w: %s has no label", ErrInvalidCatalog, where)
	}
	if prompt.IsZero() {
		return fmt.Errorf("%w: %s has no prompt", ErrInvalidCatalog, where)
	}
	return nil
}

func cloneCategories(in []Category) []Category {
	out := make([]Category, len(in))
	for i, c := range in {
		out[i] = cloneCategory(c)
	}
	return out
}

func cloneCategory(c Category) Category {
	subs := make([]Subcategory, len(c.Subcategories))
	copy(subs, c.Subcategories)
	c.Subcategories = subs
	return c
}
