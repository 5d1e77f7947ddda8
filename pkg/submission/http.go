package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/ports"
)

// DefaultTimeout bounds a single delivery.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 512

// HTTPSubmitter POSTs the report as JSON to a fixed URL.
type HTTPSubmitter struct {
	url     string
	client  *http.Client
	headers http.Header
}

type HTTPOption func(*HTTPSubmitter)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSubmitter) {
		s.client = client
	}
}

// WithHeader adds a header to every request, e.g. an Authorization token.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPSubmitter) {
		s.headers.Add(key, value)
	}
}

func NewHTTPSubmitter(url string, opts ...HTTPOption) *HTTPSubmitter {
	s := &HTTPSubmitter{
		url:     url,
		client:  &http.Client{Timeout: DefaultTimeout},
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends the report. Any non-2xx answer is an error. notify is not
// used; wrap the submitter in a Dispatcher to drive the status.
func (s *HTTPSubmitter) Submit(ctx context.Context, report domain.Report, _ ports.StatusFunc) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range s.headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("POST %s: %d %s", s.url, resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
