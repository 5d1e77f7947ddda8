package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reportflow"

// Metrics holds the report flow collectors.
type Metrics struct {
	StepEnters    *prometheus.CounterVec
	DeadEnds      *prometheus.CounterVec
	Submissions   *prometheus.CounterVec
	StatusChanges *prometheus.CounterVec
	Closes        *prometheus.CounterVec
	Delivery      *prometheus.HistogramVec

	mu      sync.Mutex
	waiting map[string]time.Time
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepEnters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_enter_total",
			Help:      "Steps entered by report sessions.",
		}, []string{"step"}),
		DeadEnds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dead_end_total",
			Help:      "Sessions that reached a reason which blocks submission.",
		}, []string{"category", "subcategory"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Reports handed to the submit callback.",
		}, []string{"report_category", "result"}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Submission status updates pushed into sessions.",
		}, []string{"status"}),
		Closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "closes_total",
			Help:      "Report dialogs closed, by the step they were closed on.",
		}, []string{"step"}),
		Delivery: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Time from waiting to confirmed or error.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		waiting: make(map[string]time.Time),
	}
	if reg != nil {
		reg.MustRegister(m.StepEnters, m.DeadEnds, m.Submissions, m.StatusChanges, m.Closes, m.Delivery)
	}
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepEnters.WithLabelValues(string(e.Step)).Inc()
		},
		OnDeadEnd: func(_ context.Context, e *domain.StepEvent) {
			m.DeadEnds.WithLabelValues(e.CategoryValue, e.SubcategoryValue).Inc()
		},
		OnSubmit: func(_ context.Context, e *domain.SubmitEvent) {
			result := "accepted"
			if e.Err != nil {
				result = "failed"
			}
			m.Submissions.WithLabelValues(e.Report.ReportCategory, result).Inc()
		},
		OnStatusChange: func(_ context.Context, e *domain.StatusEvent) {
			m.StatusChanges.WithLabelValues(string(e.To)).Inc()
			m.observeDelivery(e)
		},
		OnClose: func(_ context.Context, e *domain.CloseEvent) {
			m.Closes.WithLabelValues(string(e.Step)).Inc()
			m.mu.Lock()
			delete(m.waiting, e.SessionID)
			m.mu.Unlock()
		},
	}
}

func (m *Metrics) observeDelivery(e *domain.StatusEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e.To {
	case domain.StatusWaiting:
		m.waiting[e.SessionID] = e.Timestamp
	case domain.StatusConfirmed, domain.StatusError:
		start, ok := m.waiting[e.SessionID]
		if !ok {
			return
		}
		delete(m.waiting, e.SessionID)
		m.Delivery.WithLabelValues(string(e.To)).Observe(e.Timestamp.Sub(start).Seconds())
	}
}
