package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	EventsCreated       prometheus.Counter
	EventsStarted       prometheus.Counter
	EventsFinished      prometheus.Counter
	Registrations       prometheus.Counter
	ScoresSubmitted     prometheus.Counter
	RatingPointsApplied prometheus.Counter
	PlanningDuration    prometheus.Histogram
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}
