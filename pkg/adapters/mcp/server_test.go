package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/reportflow"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine, err := reportflow.New(reportflow.WithIDGenerator(func() string { return "m1" }))
	require.NoError(t, err)
	return NewServer(engine)
}

func TestServer_ReportFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	res, err := s.handleStart(ctx, req, map[string]interface{}{"type": "studio"})
	require.NoError(t, err)
	assert.Equal(t, "m1", res.SessionID)
	require.NotNil(t, res.View)
	assert.Equal(t, domain.StepCategory, res.View.Step)
	assert.Equal(t, "Report Studio", res.Text["report.studio"])

	res, err = s.handleSelectCategory(ctx, req, map[string]interface{}{"session_id": "m1", "value": "0"})
	require.NoError(t, err)
	assert.Equal(t, domain.StepTextInput, res.View.Step)

	res, err = s.handleSubmitNotes(ctx, req, map[string]interface{}{"session_id": "m1", "notes": "short"})
	require.NoError(t, err, "validation failures are reported in the result")
	assert.Contains(t, res.Error, "too short")
	assert.Equal(t, "report.tooShortError", res.View.Errors["notes"].ID)

	res, err = s.handleSubmitNotes(ctx, req, map[string]interface{}{"session_id": "m1", "notes": "Copied my project without credit."})
	require.NoError(t, err)
	assert.Empty(t, res.Error)

	res, err = s.handleGetView(ctx, req, map[string]interface{}{"session_id": "m1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StepConfirmation, res.View.Step, "the dry-run submitter confirms")

	res, err = s.handleClose(ctx, req, map[string]interface{}{"session_id": "m1"})
	require.NoError(t, err)
	assert.True(t, res.Closed)

	_, err = s.handleGetView(ctx, req, map[string]interface{}{"session_id": "m1"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServer_DeadEndAcknowledge(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, map[string]interface{}{})
	require.NoError(t, err)
	_, err = s.handleSelectCategory(ctx, req, map[string]interface{}{"session_id": "m1", "value": "5"})
	require.NoError(t, err)

	res, err := s.handleSelectSubcategory(ctx, req, map[string]interface{}{"session_id": "m1", "value": "4"})
	require.NoError(t, err)
	assert.Equal(t, domain.PanelDeadEnd, res.View.Panel)

	_, err = s.handleSubmitNotes(ctx, req, map[string]interface{}{"session_id": "m1", "notes": "This is my own music being used."})
	assert.ErrorIs(t, err, domain.ErrSubmissionPrevented)

	res, err = s.handleAcknowledge(ctx, req, map[string]interface{}{"session_id": "m1"})
	require.NoError(t, err)
	assert.True(t, res.Closed)
}

func TestServer_CatalogResource(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.handleCatalog(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, CatalogURI, text.URI)

	var cats []domain.Category
	require.NoError(t, json.Unmarshal([]byte(text.Text), &cats))
	assert.Equal(t, s.engine.Catalog().Len(), len(cats))
}
