package submission_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSubmitter_PostsPayload(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := submission.NewHTTPSubmitter(srv.URL, submission.WithHeader("Authorization", "Bearer t0k"))
	err := s.Submit(context.Background(), domain.Report{ReportCategory: "8", Notes: "spam links everywhere in the comments"}, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"report_category": "8",
		"notes":           "spam links everywhere in the comments",
	}, got)
	assert.Equal(t, "Bearer t0k", auth)
}

func TestHTTPSubmitter_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := submission.NewHTTPSubmitter(srv.URL).Submit(context.Background(), domain.Report{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "nope")
}
