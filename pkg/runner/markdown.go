package runner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/i18n"
)

// Markdown renders a view as a markdown document resolved through bundle.
// A nil bundle selects i18n.Default().
func Markdown(bundle *i18n.Bundle, v domain.View) string {
	if bundle == nil {
		bundle = i18n.Default()
	}
	var b strings.Builder
	text := func(ref domain.MessageRef) string { return bundle.Text(ref) }

	fmt.Fprintf(&b, "# %s\n\n", text(v.Title))
	if v.Banner != nil {
		fmt.Fprintf(&b, "> **%s**\n\n", text(*v.Banner))
	}
	if v.Instructions != nil {
		fmt.Fprintf(&b, "%s\n\n", text(*v.Instructions))
	}
	if v.Header != nil {
		fmt.Fprintf(&b, "## %s\n\n", text(*v.Header))
	}
	if v.Prompt != nil {
		fmt.Fprintf(&b, "%s\n\n", text(*v.Prompt))
	}

	if v.Field != nil && v.Field.Kind == domain.FieldSelect {
		for _, c := range v.Field.Choices {
			if c.Value == "" {
				continue
			}
			fmt.Fprintf(&b, "- `%s` %s\n", c.Value, text(c.Label))
		}
		b.WriteString("\n")
	}

	names := make([]string, 0, len(v.Errors))
	for name := range v.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "**Error:** %s\n\n", text(v.Errors[name]))
	}

	switch {
	case v.Waiting:
		b.WriteString("_Sending..._\n")
	case v.Panel == domain.PanelSelect:
		fmt.Fprintf(&b, "_Type a value from the list, then enter for %s._\n", text(v.NextLabel))
	case v.Panel == domain.PanelForm:
		fmt.Fprintf(&b, "_Type your notes (%d to %d characters), then enter to %s._\n",
			v.Field.MinLength, v.Field.MaxLength, text(v.NextLabel))
	default:
		fmt.Fprintf(&b, "_Press enter to %s._\n", text(v.NextLabel))
	}
	return b.String()
}
