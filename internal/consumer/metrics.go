package consumer

import "github.com/prometheus/client_golang/prometheus"

var (
	recordedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mental_reset",
		Subsystem: "event_log",
		Name:      "events_recorded_total",
		Help:      "Reset session events written to the event log and committed.",
	}, []string{"topic", "event_type"})

	handlerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mental_reset",
		Subsystem: "event_log",
		Name:      "handler_failures_total",
		Help:      "Events left uncommitted because the event log write failed.",
	}, []string{"topic", "event_type"})

	undecodable = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mental_reset",
		Subsystem: "event_log",
		Name:      "undecodable_records_total",
		Help:      "Records skipped because their framing, headers or JSON were invalid.",
	}, []string{"topic"})

	lastRecorded = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mental_reset",
		Subsystem: "event_log",
		Name:      "last_recorded_timestamp_seconds",
		Help:      "Kafka timestamp of the newest recorded event per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(recordedCounter, handlerFailures, undecodable, lastRecorded)
}

func recordProcessed(msg Message) {
	recordedCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
	if !msg.Timestamp.IsZero() {
		lastRecorded.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	handlerFailures.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDecodeError(topic string) {
	undecodable.WithLabelValues(topic).Inc()
}
