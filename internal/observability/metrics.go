package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mental_reset",
		Subsystem: "persistence",
		Name:      "last_session_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent reset session persisted.",
	})

	sessionsSavedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mental_reset",
		Subsystem: "planner",
		Name:      "sessions_saved_total",
		Help:      "Number of reset sessions saved, labeled by mood.",
	}, []string{"mood"})

	saveFailuresCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mental_reset",
		Subsystem: "planner",
		Name:      "save_failures_total",
		Help:      "Number of save attempts that did not persist, labeled by reason.",
	}, []string{"reason"})

	fetchFailuresCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mental_reset",
		Subsystem: "planner",
		Name:      "fetch_failures_total",
		Help:      "Number of saved-session list requests that failed to reach storage.",
	})

	limitRejectionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mental_reset",
		Subsystem: "planner",
		Name:      "activity_limit_rejections_total",
		Help:      "Number of activity selections rejected by the selection cap.",
	})

	resetsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mental_reset",
		Subsystem: "planner",
		Name:      "form_resets_total",
		Help:      "Number of times a draft was cleared by the user.",
	})

	draftsDiscardedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mental_reset",
		Subsystem: "drafts",
		Name:      "discarded_on_sign_out_total",
		Help:      "Number of drafts dropped because their owner signed out.",
	})
)

// Save failure reasons.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonStorage         = "storage"
)

func init() {
	prometheus.MustRegister(
		sessionPersistGauge,
		sessionsSavedCounter,
		saveFailuresCounter,
		fetchFailuresCounter,
		limitRejectionsCounter,
		resetsCounter,
		draftsDiscardedCounter,
	)
}

// RecordSessionPersisted updates the persistence watermark gauge.
func RecordSessionPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	sessionPersistGauge.Set(float64(ts.Unix()))
}

// RecordSessionSaved counts a successful save.
func RecordSessionSaved(mood string) {
	if mood == "" {
		mood = "none"
	}
	sessionsSavedCounter.WithLabelValues(mood).Inc()
}

// RecordSaveFailure counts a save that did not persist.
func RecordSaveFailure(reason string) {
	saveFailuresCounter.WithLabelValues(reason).Inc()
}

func RecordFetchFailure() {
	fetchFailuresCounter.Inc()
}

func RecordLimitRejection() {
	limitRejectionsCounter.Inc()
}

func RecordReset() {
	resetsCounter.Inc()
}

// RecordDraftsDiscarded counts drafts removed after a sign-out.
func RecordDraftsDiscarded(n int) {
	if n <= 0 {
		return
	}
	draftsDiscardedCounter.Add(float64(n))
}
