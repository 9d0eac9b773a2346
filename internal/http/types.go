package http

import (
	"net/http"

	"github.com/mauv0809/court-call/internal/club"
	"github.com/mauv0809/court-call/internal/config"
	"github.com/mauv0809/court-call/internal/event"
	"github.com/mauv0809/court-call/internal/metrics"
	"github.com/mauv0809/court-call/internal/notifier"
	"github.com/mauv0809/court-call/internal/pubsub"
)

type Server struct {
	Store          club.ClubStore
	Events         event.EventService
	Metrics        metrics.Metrics
	Stats          metrics.MetricsStore
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	PubSub         pubsub.PubSubClient
	Router         *http.ServeMux
}
