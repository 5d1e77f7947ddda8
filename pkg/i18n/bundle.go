// Package i18n resolves message references into display text.
package i18n

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/reportflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed en.yaml
var defaultMessages []byte

// CommunityGuidelinesURL is where the instructions link points.
const CommunityGuidelinesURL = "/community_guidelines"

// Bundle maps message IDs to text for one locale.
// Placeholders written as {Name} are filled from the bundle's values.
type Bundle struct {
	messages map[string]string
	values   map[string]string
}

// Option configures a Bundle.
type Option func(*Bundle)

// WithValue sets a placeholder value used when formatting messages.
func WithValue(name, value string) Option {
	return func(b *Bundle) {
		b.values[name] = value
	}
}

// New parses a flat YAML map of message IDs to text.
func New(r io.Reader, opts ...Option) (*Bundle, error) {
	messages := make(map[string]string)
	if err := yaml.NewDecoder(r).Decode(&messages); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	b := &Bundle{
		messages: messages,
		values:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Default returns the embedded English bundle.
// The community guidelines link is rendered as a markdown link.
func Default(opts ...Option) *Bundle {
	b, err := New(strings.NewReader(string(defaultMessages)))
	if err != nil {
		panic(fmt.Sprintf("embedded messages are invalid: %v", err))
	}
	link := fmt.Sprintf("[%s](%s)", b.Text(domain.Msg("report.CommunityGuidelinesLinkText")), CommunityGuidelinesURL)
	b.values["CommunityGuidelinesLink"] = link
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Merge overlays the messages from r on top of the bundle.
func (b *Bundle) Merge(r io.Reader) error {
	overlay, err := New(r)
	if err != nil {
		return err
	}
	for k, v := range overlay.messages {
		b.messages[k] = v
	}
	return nil
}

// Has reports whether the bundle defines id.
func (b *Bundle) Has(id string) bool {
	_, ok := b.messages[id]
	return ok
}

// Text resolves ref. Unknown IDs resolve to the ID itself.
func (b *Bundle) Text(ref domain.MessageRef) string {
	msg, ok := b.messages[ref.ID]
	if !ok {
		return ref.ID
	}
	if !strings.Contains(msg, "{") {
		return msg
	}
	for name, value := range b.values {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}
	return msg
}

// Missing lists the IDs referenced by the catalog that the bundle lacks.
func (b *Bundle) Missing(c *domain.Catalog) []string {
	seen := make(map[string]bool)
	check := func(ref domain.MessageRef) {
		if !b.Has(ref.ID) {
			seen[ref.ID] = true
		}
	}
	for _, cat := range c.Categories() {
		check(cat.Label)
		check(cat.Prompt)
		for _, s := range cat.Subcategories {
			check(s.Label)
			check(s.Prompt)
		}
	}
	missing := make([]string, 0, len(seen))
	for id := range seen {
		missing = append(missing, id)
	}
	sort.Strings(missing)
	return missing
}

// Resolve returns the text of every message referenced by a view, keyed by ID.
func (b *Bundle) Resolve(v domain.View) map[string]string {
	out := make(map[string]string)
	add := func(ref *domain.MessageRef) {
		if ref != nil && !ref.IsZero() {
			out[ref.ID] = b.Text(*ref)
		}
	}
	add(&v.Title)
	add(v.Banner)
	add(v.Instructions)
	add(v.Header)
	add(v.Prompt)
	add(&v.NextLabel)
	if v.Field != nil {
		for i := range v.Field.Choices {
			add(&v.Field.Choices[i].Label)
		}
		add(&v.Field.Messages.Required)
		add(&v.Field.Messages.MinLength)
		add(&v.Field.Messages.MaxLength)
	}
	for _, ref := range v.Errors {
		add(&ref)
	}
	return out
}
