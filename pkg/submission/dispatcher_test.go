package submission_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/reportflow/internal/logging"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/ports"
	"github.com/aretw0/reportflow/pkg/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusLog struct {
	mu   sync.Mutex
	seen []domain.Status
}

func (l *statusLog) notify(_ context.Context, s domain.Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, s)
	return nil
}

func (l *statusLog) get() []domain.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Status(nil), l.seen...)
}

func TestDispatcher_Confirmed(t *testing.T) {
	release := make(chan struct{})
	var sent domain.Report
	backend := ports.SubmitterFunc(func(ctx context.Context, r domain.Report, _ ports.StatusFunc) error {
		<-release
		sent = r
		return nil
	})

	d := submission.NewDispatcher(backend)
	log := &statusLog{}
	report := domain.Report{ReportCategory: "2", Notes: "twenty characters min"}

	require.NoError(t, d.Submit(context.Background(), report, log.notify))
	assert.Equal(t, []domain.Status{domain.StatusWaiting}, log.get())

	close(release)
	d.Wait()

	assert.Equal(t, []domain.Status{domain.StatusWaiting, domain.StatusConfirmed}, log.get())
	assert.Equal(t, report, sent)
}

func TestDispatcher_ErrorIsNotRetried(t *testing.T) {
	calls := 0
	backend := ports.SubmitterFunc(func(context.Context, domain.Report, ports.StatusFunc) error {
		calls++
		return errors.New("backend down")
	})

	var buf bytes.Buffer
	d := submission.NewDispatcher(backend, submission.WithLogger(logging.NewTo(&buf, slog.LevelDebug)))
	log := &statusLog{}

	require.NoError(t, d.Submit(context.Background(), domain.Report{}, log.notify))
	d.Wait()

	assert.Equal(t, 1, calls)
	assert.Equal(t, []domain.Status{domain.StatusWaiting, domain.StatusError}, log.get())
	assert.Contains(t, buf.String(), `err="backend down"`)
}

func TestDispatcher_SurvivesCallerCancel(t *testing.T) {
	backend := ports.SubmitterFunc(func(ctx context.Context, _ domain.Report, _ ports.StatusFunc) error {
		time.Sleep(20 * time.Millisecond)
		return ctx.Err()
	})

	d := submission.NewDispatcher(backend)
	log := &statusLog{}
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, d.Submit(ctx, domain.Report{}, log.notify))
	cancel()
	d.Wait()

	assert.Equal(t, []domain.Status{domain.StatusWaiting, domain.StatusConfirmed}, log.get())
}

func TestDispatcher_Timeout(t *testing.T) {
	backend := ports.SubmitterFunc(func(ctx context.Context, _ domain.Report, _ ports.StatusFunc) error {
		<-ctx.Done()
		return ctx.Err()
	})

	d := submission.NewDispatcher(backend, submission.WithTimeout(10*time.Millisecond))
	log := &statusLog{}

	require.NoError(t, d.Submit(context.Background(), domain.Report{}, log.notify))
	d.Wait()

	assert.Equal(t, []domain.Status{domain.StatusWaiting, domain.StatusError}, log.get())
}

func TestDispatcher_WaitingRejected(t *testing.T) {
	called := false
	backend := ports.SubmitterFunc(func(context.Context, domain.Report, ports.StatusFunc) error {
		called = true
		return nil
	})
	d := submission.NewDispatcher(backend)

	err := d.Submit(context.Background(), domain.Report{}, func(context.Context, domain.Status) error {
		return domain.ErrSessionNotFound
	})
	d.Wait()

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.False(t, called)
}

func TestLogSubmitter(t *testing.T) {
	var buf bytes.Buffer
	s := submission.NewLogSubmitter(logging.NewTo(&buf, slog.LevelInfo))

	require.NoError(t, s.Submit(context.Background(), domain.Report{ReportCategory: "6", Notes: "héllo"}, nil))
	assert.Contains(t, buf.String(), "report_category=6")
	assert.Contains(t, buf.String(), "notes_length=5")
}
