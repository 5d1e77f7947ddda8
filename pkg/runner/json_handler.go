package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/i18n"
)

// Frame is one line written by the JSONHandler.
type Frame struct {
	View    *domain.View      `json:"view,omitempty"`
	Text    map[string]string `json:"text,omitempty"`
	Message string            `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for JSON-Lines communication.
// Output writes one Frame per line; Input accepts either a JSON string or a
// plain line.
type JSONHandler struct {
	Encoder *json.Encoder
	Bundle  *i18n.Bundle

	lines *lineReader
}

// NewJSONHandler creates a handler for JSON IO.
// A nil bundle selects i18n.Default().
func NewJSONHandler(r io.Reader, w io.Writer, bundle *i18n.Bundle) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	if bundle == nil {
		bundle = i18n.Default()
	}
	return &JSONHandler{
		Encoder: json.NewEncoder(w),
		Bundle:  bundle,
		lines:   newLineReader(r),
	}
}

func (h *JSONHandler) Output(ctx context.Context, view domain.View) error {
	return h.Encoder.Encode(Frame{View: &view, Text: h.Bundle.Resolve(view)})
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	line, err := h.lines.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)

	var s string
	if strings.HasPrefix(line, `"`) && json.Unmarshal([]byte(line), &s) == nil {
		line = s
	}
	return SanitizeInput(line)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Frame{Message: msg})
}
