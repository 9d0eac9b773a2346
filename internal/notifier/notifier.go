package notifier

import (
	"github.com/mauv0809/court-call/internal/club"
	"github.com/mauv0809/court-call/internal/event"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For a freshly planned event
	SendScheduleNotification(detail *event.EventDetail, names map[string]string, dryRun bool) error
	// For a finished event with ratings applied
	SendStandingsNotification(summary *event.EventSummary, names map[string]string, dryRun bool) error
	// For the club-wide rating table
	SendLeaderboard(players []club.PlayerInfo, dryRun bool) error
}
