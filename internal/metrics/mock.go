package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	eventsCreated       int
	eventsStarted       int
	eventsFinished      int
	registrations       int
	scoresSubmitted     int
	ratingPointsApplied float64
	planningDurations   []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		planningDurations: make([]float64, 0),
	}
}

func (m *Mock) IncEventsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsCreated++
}

func (m *Mock) IncEventsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsStarted++
}

func (m *Mock) IncEventsFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsFinished++
}

func (m *Mock) IncRegistrations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations++
}

func (m *Mock) IncScoresSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoresSubmitted++
}

func (m *Mock) AddRatingPointsApplied(points float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingPointsApplied += points
}

func (m *Mock) ObservePlanningDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.planningDurations = append(m.planningDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// EventsCreated returns the number of times IncEventsCreated was called.
func (m *Mock) EventsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsCreated
}

// EventsStarted returns the number of times IncEventsStarted was called.
func (m *Mock) EventsStarted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsStarted
}

// EventsFinished returns the number of times IncEventsFinished was called.
func (m *Mock) EventsFinished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsFinished
}

// Registrations returns the number of times IncRegistrations was called.
func (m *Mock) Registrations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registrations
}

// ScoresSubmitted returns the number of times IncScoresSubmitted was called.
func (m *Mock) ScoresSubmitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoresSubmitted
}

// RatingPointsApplied returns the accumulated rating points.
func (m *Mock) RatingPointsApplied() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingPointsApplied
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// MockStore is an in-memory MetricsStore for testing.
type MockStore struct {
	mu     sync.Mutex
	Counts map[string]int
}

// NewMockStore creates a new in-memory MetricsStore.
func NewMockStore() *MockStore {
	return &MockStore{Counts: make(map[string]int)}
}

func (m *MockStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counts[key]++
}

func (m *MockStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.Counts))
	for k, v := range m.Counts {
		out[k] = v
	}
	return out, nil
}
