package runtime_test

import (
	"testing"

	"github.com/aretw0/reportflow/internal/runtime"
	"github.com/aretw0/reportflow/pkg/catalog"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func session(flow domain.FlowState, status domain.Status) *domain.Session {
	s := domain.NewSession("s1", "project")
	s.Flow = flow
	s.Status = status
	return s
}

func TestRender_CategoryStep(t *testing.T) {
	v, err := runtime.Render(catalog.Default(), session(domain.NewFlowState(), domain.StatusIdle))
	require.NoError(t, err)

	assert.Equal(t, domain.StepCategory, v.Step)
	assert.Equal(t, 0, v.Progress)
	assert.Equal(t, domain.PanelSelect, v.Panel)
	assert.Equal(t, "report.project", v.Title.ID)
	require.NotNil(t, v.Instructions)
	assert.Equal(t, "report.projectInstructions", v.Instructions.ID)
	require.NotNil(t, v.Field)
	assert.Equal(t, form.FieldCategory, v.Field.Name)
	assert.Len(t, v.Field.Choices, catalog.Default().Len())
	assert.Equal(t, runtime.MsgNext, v.NextLabel.ID)
	assert.Nil(t, v.Banner)
}

func TestRender_SubcategoryStep(t *testing.T) {
	v, err := runtime.Render(catalog.Default(), session(domain.FlowState{Step: domain.StepSubcategory, CategoryValue: "5"}, domain.StatusIdle))
	require.NoError(t, err)

	assert.Equal(t, domain.PanelSelect, v.Panel)
	assert.Equal(t, "report.reasonPersonal", v.Header.ID)
	assert.Equal(t, "report.promptPersonal", v.Prompt.ID)
	require.NotNil(t, v.Field)
	assert.Len(t, v.Field.Choices, 5)
}

func TestRender_TextInputStep(t *testing.T) {
	v, err := runtime.Render(catalog.Default(), session(domain.FlowState{Step: domain.StepTextInput, CategoryValue: "0"}, domain.StatusWaiting))
	require.NoError(t, err)

	assert.Equal(t, domain.PanelForm, v.Panel)
	assert.Equal(t, "report.reasonCopy", v.Header.ID, "category stands in for the missing subcategory")
	require.NotNil(t, v.Field)
	assert.Equal(t, domain.FieldTextArea, v.Field.Kind)
	assert.Equal(t, form.NotesMinLength, v.Field.MinLength)
	assert.Equal(t, form.NotesMaxLength, v.Field.MaxLength)
	assert.Equal(t, runtime.MsgSend, v.NextLabel.ID)
	assert.True(t, v.Waiting)
}

func TestRender_DeadEndOffersCloseOnly(t *testing.T) {
	v, err := runtime.Render(catalog.Default(), session(domain.FlowState{Step: domain.StepTextInput, CategoryValue: "5", SubcategoryValue: "4"}, domain.StatusIdle))
	require.NoError(t, err)

	assert.Equal(t, domain.PanelDeadEnd, v.Panel)
	assert.Nil(t, v.Field, "dead end has no text field")
	assert.Equal(t, runtime.MsgClose, v.NextLabel.ID)
	assert.True(t, v.SubmitEnabled)
	assert.Equal(t, "report.reasonMusic", v.Header.ID)
}

func TestRender_ConfirmedOverridesStep(t *testing.T) {
	v, err := runtime.Render(catalog.Default(), session(domain.NewFlowState(), domain.StatusConfirmed))
	require.NoError(t, err)

	assert.Equal(t, domain.StepConfirmation, v.Step)
	assert.Equal(t, 3, v.Progress)
	assert.Equal(t, domain.PanelConfirmation, v.Panel)
	assert.Equal(t, runtime.MsgReceivedHeader, v.Header.ID)
	assert.Equal(t, runtime.MsgClose, v.NextLabel.ID)
}

func TestRender_ErrorBanner(t *testing.T) {
	v, err := runtime.Render(catalog.Default(), session(domain.FlowState{Step: domain.StepTextInput, CategoryValue: "0"}, domain.StatusError))
	require.NoError(t, err)
	require.NotNil(t, v.Banner)
	assert.Equal(t, runtime.MsgError, v.Banner.ID)
	assert.Equal(t, domain.StepTextInput, v.Step, "error keeps the current step")
}

func TestRender_UnknownCategoryIsAnError(t *testing.T) {
	_, err := runtime.Render(catalog.Default(), session(domain.FlowState{Step: domain.StepTextInput, CategoryValue: "99"}, domain.StatusIdle))
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}
