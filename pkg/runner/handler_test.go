package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectView() domain.View {
	header := domain.Msg("report.reasonPersonal")
	return domain.View{
		SessionID: "v1",
		Step:      domain.StepSubcategory,
		Panel:     domain.PanelSelect,
		Title:     domain.Msg("report.studio"),
		Header:    &header,
		Field: &domain.Field{
			Name: "category",
			Kind: domain.FieldSelect,
			Choices: []domain.Choice{
				{Value: "", Label: domain.Msg("report.reasonPlaceHolder")},
				{Value: "8", Label: domain.Msg("report.reasonImage")},
			},
		},
		NextLabel: domain.Msg("general.next"),
		Errors:    map[string]domain.MessageRef{"category": domain.Msg("report.reasonMissing")},
	}
}

func TestTextHandler_Output(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewTextHandler(strings.NewReader(""), &out, nil,
		runner.WithTextHandlerRenderer(func(s string) (string, error) {
			return "Rendered: " + s, nil
		}),
	)

	require.NoError(t, h.Output(context.Background(), selectView()))

	output := out.String()
	assert.True(t, strings.HasPrefix(output, "Rendered: # Report Studio"))
	assert.Contains(t, output, "## Sharing Personal Contact Information")
	assert.Contains(t, output, "- `8` Inappropriate Images")
	assert.NotContains(t, output, "Select a reason")
	assert.Contains(t, output, "**Error:** Please select a reason")
}

func TestTextHandler_InputStripsControlCharacters(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewTextHandler(strings.NewReader("  he\x07llo \n"), &out, nil)

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
	assert.Equal(t, "> ", out.String())
}

func TestJSONHandler_Output(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewJSONHandler(strings.NewReader(""), &out, nil)

	require.NoError(t, h.Output(context.Background(), selectView()))
	require.NoError(t, h.SystemOutput(context.Background(), "bye"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var frame runner.Frame
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &frame))
	require.NotNil(t, frame.View)
	assert.Equal(t, domain.StepSubcategory, frame.View.Step)
	assert.Equal(t, "Inappropriate Images", frame.Text["report.reasonImage"])

	var msg runner.Frame
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &msg))
	assert.Nil(t, msg.View)
	assert.Equal(t, "bye", msg.Message)
}

func TestJSONHandler_Input(t *testing.T) {
	h := runner.NewJSONHandler(strings.NewReader("\"Hello World\"\njust plain text\n"), nil, nil)

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello World", val)

	val, err = h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "just plain text", val)
}

func TestMarkdown_FormHint(t *testing.T) {
	prompt := domain.Msg("report.promptCopy")
	v := domain.View{
		Title:     domain.Msg("report.project"),
		Panel:     domain.PanelForm,
		Prompt:    &prompt,
		Field:     &domain.Field{Name: "notes", Kind: domain.FieldTextArea, MinLength: 20, MaxLength: 500},
		NextLabel: domain.Msg("report.send"),
	}
	md := runner.Markdown(nil, v)
	assert.Contains(t, md, "Please provide a link to the original project.")
	assert.Contains(t, md, "(20 to 500 characters), then enter to Send")
}
