package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// disabledClient drops outgoing messages but still decodes incoming ones.
type disabledClient struct{}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventNotifySchedule  EventType = "notify-schedule"
	EventNotifyStandings EventType = "notify-standings"
)

// EventMessage is the payload published when an event changes state.
type EventMessage struct {
	Type    EventType `msgpack:"type"`
	EventID string    `msgpack:"event_id"`
}
