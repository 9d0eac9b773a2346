package notifier

import (
	"sync"

	"github.com/mauv0809/court-call/internal/club"
	"github.com/mauv0809/court-call/internal/event"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendScheduleNotificationCalls  []*event.EventDetail
	SendStandingsNotificationCalls []*event.EventSummary
	SendLeaderboardCalls           [][]club.PlayerInfo

	// Optional error injection
	SendScheduleNotificationFunc  func(detail *event.EventDetail, names map[string]string, dryRun bool) error
	SendStandingsNotificationFunc func(summary *event.EventSummary, names map[string]string, dryRun bool) error
	SendLeaderboardFunc           func(players []club.PlayerInfo, dryRun bool) error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendScheduleNotificationCalls = nil
	m.SendStandingsNotificationCalls = nil
	m.SendLeaderboardCalls = nil
}

func (m *Mock) SendScheduleNotification(detail *event.EventDetail, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendScheduleNotificationCalls = append(m.SendScheduleNotificationCalls, detail)
	if m.SendScheduleNotificationFunc != nil {
		return m.SendScheduleNotificationFunc(detail, names, dryRun)
	}
	return nil
}

func (m *Mock) SendStandingsNotification(summary *event.EventSummary, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsNotificationCalls = append(m.SendStandingsNotificationCalls, summary)
	if m.SendStandingsNotificationFunc != nil {
		return m.SendStandingsNotificationFunc(summary, names, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(players []club.PlayerInfo, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, players)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(players, dryRun)
	}
	return nil
}
