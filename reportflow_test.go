package reportflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/reportflow"
	"github.com/aretw0/reportflow/pkg/adapters/memory"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/form"
	"github.com/aretw0/reportflow/pkg/ports"
	"github.com/aretw0/reportflow/pkg/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validNotes = "This is clearly copied from another project."

func fixedID(id string) reportflow.Option {
	return reportflow.WithIDGenerator(func() string { return id })
}

func TestEngine_DispatcherRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var received map[string]any
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer backend.Close()

	dispatcher := submission.NewDispatcher(submission.NewHTTPSubmitter(backend.URL))
	engine, err := reportflow.New(reportflow.WithSubmitter(dispatcher), fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, view, err := engine.Open(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StepCategory, view.Step)
	assert.Equal(t, "report.project", view.Title.ID)

	view, err = engine.SelectCategory(ctx, "s1", "0")
	require.NoError(t, err)
	assert.Equal(t, domain.StepTextInput, view.Step, "a category without subcategories skips ahead")

	view, err = engine.SubmitNotes(ctx, "s1", validNotes)
	require.NoError(t, err)
	assert.True(t, view.Waiting)

	_, err = engine.SubmitNotes(ctx, "s1", validNotes)
	assert.ErrorIs(t, err, domain.ErrSubmissionPending)

	close(release)
	dispatcher.Wait()

	view, err = engine.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepConfirmation, view.Step)

	mu.Lock()
	assert.Equal(t, map[string]any{"report_category": "0", "notes": validNotes}, received)
	mu.Unlock()

	require.NoError(t, engine.Acknowledge(ctx, "s1"))
	_, err = engine.View(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_DeadEnd(t *testing.T) {
	called := false
	submit := ports.SubmitterFunc(func(context.Context, domain.Report, ports.StatusFunc) error {
		called = true
		return nil
	})
	engine, err := reportflow.New(reportflow.WithSubmitter(submit), fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "studio")
	require.NoError(t, err)
	_, err = engine.SelectCategory(ctx, "s1", "5")
	require.NoError(t, err)
	view, err := engine.SelectSubcategory(ctx, "s1", "4")
	require.NoError(t, err)

	assert.Equal(t, domain.PanelDeadEnd, view.Panel)
	assert.Nil(t, view.Field)
	assert.Equal(t, "general.close", view.NextLabel.ID)

	_, err = engine.SubmitNotes(ctx, "s1", validNotes)
	assert.ErrorIs(t, err, domain.ErrSubmissionPrevented)
	assert.False(t, called)

	require.NoError(t, engine.Acknowledge(ctx, "s1"))
}

func TestEngine_ShortNotesShowInlineError(t *testing.T) {
	engine, err := reportflow.New(fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	_, err = engine.SelectCategory(ctx, "s1", "3")
	require.NoError(t, err)

	view, err := engine.SubmitNotes(ctx, "s1", "too short!")
	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "report.tooShortError", verr.Message.ID)
	assert.Equal(t, domain.StepTextInput, view.Step)
	assert.Equal(t, "report.tooShortError", view.Errors[form.FieldNotes].ID)

	s, err := engine.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, s.Status)
}

func TestEngine_PlaceholderIsRequired(t *testing.T) {
	engine, err := reportflow.New(fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)

	view, err := engine.SelectCategory(ctx, "s1", "")
	assert.ErrorIs(t, err, form.ErrValidation)
	assert.Equal(t, "report.reasonMissing", view.Errors[form.FieldCategory].ID)
	assert.Equal(t, domain.StepCategory, view.Step)
}

func TestEngine_SubmitErrorIsReturnedWithoutStatus(t *testing.T) {
	boom := errors.New("backend unreachable")
	submit := ports.SubmitterFunc(func(context.Context, domain.Report, ports.StatusFunc) error {
		return boom
	})
	engine, err := reportflow.New(reportflow.WithSubmitter(submit), fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	_, err = engine.SelectCategory(ctx, "s1", "1")
	require.NoError(t, err)

	view, err := engine.SubmitNotes(ctx, "s1", validNotes)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StepTextInput, view.Step)
	assert.Nil(t, view.Banner, "status is owned by the external pipeline")
}

func TestEngine_ErrorStatusShowsBannerAndAllowsRetry(t *testing.T) {
	attempts := 0
	submit := ports.SubmitterFunc(func(ctx context.Context, _ domain.Report, notify ports.StatusFunc) error {
		attempts++
		if attempts == 1 {
			return notify(ctx, domain.StatusError)
		}
		return notify(ctx, domain.StatusConfirmed)
	})
	engine, err := reportflow.New(reportflow.WithSubmitter(submit), fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	_, err = engine.SelectCategory(ctx, "s1", "2")
	require.NoError(t, err)

	view, err := engine.SubmitNotes(ctx, "s1", validNotes)
	require.NoError(t, err)
	require.NotNil(t, view.Banner)
	assert.Equal(t, "report.error", view.Banner.ID)
	assert.Equal(t, domain.StepTextInput, view.Step)

	view, err = engine.SubmitNotes(ctx, "s1", validNotes)
	require.NoError(t, err)
	assert.Equal(t, domain.StepConfirmation, view.Step)
	assert.Equal(t, 2, attempts)
}

func TestEngine_ConfirmedForcesConfirmation(t *testing.T) {
	engine, err := reportflow.New(fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	require.NoError(t, engine.SetStatus(ctx, "s1", domain.StatusConfirmed))

	view, err := engine.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepConfirmation, view.Step)

	_, err = engine.SelectCategory(ctx, "s1", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestEngine_SetStatusRejectsUnknown(t *testing.T) {
	engine, err := reportflow.New(fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	assert.ErrorIs(t, engine.SetStatus(ctx, "s1", "done"), domain.ErrInvalidStatus)
	assert.ErrorIs(t, engine.SetStatus(ctx, "missing", domain.StatusWaiting), domain.ErrSessionNotFound)
}

func TestEngine_CloseFromAnyStepForgetsSession(t *testing.T) {
	store := memory.NewStore()
	var diffs []*domain.SessionDiff
	engine, err := reportflow.New(
		reportflow.WithStore(store),
		reportflow.WithObserver(func(_ context.Context, d *domain.SessionDiff) { diffs = append(diffs, d) }),
		fixedID("s1"),
	)
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	_, err = engine.SelectCategory(ctx, "s1", "5")
	require.NoError(t, err)
	require.NoError(t, engine.Close(ctx, "s1"))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.Len(t, diffs, 2)
	require.NotNil(t, diffs[0].Step)
	assert.Equal(t, domain.StepSubcategory, *diffs[0].Step)
	require.NotNil(t, diffs[1].Closed)
	assert.True(t, *diffs[1].Closed)

	assert.ErrorIs(t, engine.Close(ctx, "s1"), domain.ErrSessionNotFound)
}

func TestEngine_HooksFire(t *testing.T) {
	var steps []domain.Step
	var submitted []domain.Report
	hooks := domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) { steps = append(steps, e.Step) },
		OnSubmit:    func(_ context.Context, e *domain.SubmitEvent) { submitted = append(submitted, e.Report) },
	}
	engine, err := reportflow.New(reportflow.WithLifecycleHooks(hooks), fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	_, err = engine.SelectCategory(ctx, "s1", "6")
	require.NoError(t, err)
	_, err = engine.SubmitNotes(ctx, "s1", validNotes)
	require.NoError(t, err)

	assert.Equal(t, []domain.Step{domain.StepCategory, domain.StepTextInput, domain.StepConfirmation}, steps)
	assert.Equal(t, []domain.Report{{ReportCategory: "6", Notes: validNotes}}, submitted)
}

func TestEngine_DuplicateIDFailsOpen(t *testing.T) {
	engine, err := reportflow.New(fixedID("same"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	_, _, err = engine.Open(ctx, "")
	assert.Error(t, err)
}

func TestEngine_ConcurrentSubmitsDeliverOnce(t *testing.T) {
	var delivered atomic.Int32
	backend := ports.SubmitterFunc(func(context.Context, domain.Report, ports.StatusFunc) error {
		delivered.Add(1)
		return nil
	})
	dispatcher := submission.NewDispatcher(backend)
	slow := ports.SubmitterFunc(func(ctx context.Context, r domain.Report, notify ports.StatusFunc) error {
		time.Sleep(time.Millisecond)
		return dispatcher.Submit(ctx, r, notify)
	})
	engine, err := reportflow.New(reportflow.WithSubmitter(slow), fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	_, err = engine.SelectCategory(ctx, "s1", "0")
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	var accepted, pending atomic.Int32
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.SubmitNotes(ctx, "s1", validNotes)
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, domain.ErrSubmissionPending):
				pending.Add(1)
			}
		}()
	}
	wg.Wait()
	dispatcher.Wait()

	assert.Equal(t, int32(1), delivered.Load())
	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, int32(callers-1), pending.Load())

	view, err := engine.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepConfirmation, view.Step)
}

func TestEngine_SubmitMarksWaitingBeforeCallback(t *testing.T) {
	var seen domain.Status
	var engine *reportflow.Engine
	submit := ports.SubmitterFunc(func(ctx context.Context, _ domain.Report, _ ports.StatusFunc) error {
		s, err := engine.Session(ctx, "s1")
		if err != nil {
			return err
		}
		seen = s.Status
		return nil
	})
	engine, err := reportflow.New(reportflow.WithSubmitter(submit), fixedID("s1"))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = engine.Open(ctx, "")
	require.NoError(t, err)
	_, err = engine.SelectCategory(ctx, "s1", "6")
	require.NoError(t, err)

	view, err := engine.SubmitNotes(ctx, "s1", validNotes)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, seen)
	assert.True(t, view.Waiting, "the submitter has not reported back yet")

	_, err = engine.SubmitNotes(ctx, "s1", validNotes)
	assert.ErrorIs(t, err, domain.ErrSubmissionPending)
}
