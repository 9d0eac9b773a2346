package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/court-call/internal/club"
	"github.com/mauv0809/court-call/internal/event"
	"github.com/mauv0809/court-call/internal/metrics"
	"github.com/mauv0809/court-call/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendScheduleNotification(detail *event.EventDetail, names map[string]string, dryRun bool) error {
	msg := s.formatSchedule(detail, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendStandingsNotification(summary *event.EventSummary, names map[string]string, dryRun bool) error {
	msg := s.formatStandings(summary, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(players []club.PlayerInfo, dryRun bool) error {
	msg := s.formatLeaderboard(players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func displayName(names map[string]string, playerID string) string {
	if name, ok := names[playerID]; ok && name != "" {
		return name
	}
	return playerID
}

func teamLabel(names map[string]string, team [2]string) string {
	return fmt.Sprintf("%s & %s", displayName(names, team[0]), displayName(names, team[1]))
}

func localTime(t time.Time) string {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		return t.Format("Monday 02 Jan, 15:04")
	}
	return t.In(loc).Format("Monday 02 Jan, 15:04")
}

// formatSchedule creates the Slack message for a freshly planned event using Block Kit.
func (s *Notifier) formatSchedule(detail *event.EventDetail, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🎾 %s is under way! 🎾", detail.Event.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Courts: %d\nRounds: %d\nStart: %s",
		detail.Event.CourtsCount, detail.Event.RoundsPlanned, localTime(detail.Event.StartTime))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	for _, round := range detail.Rounds {
		var lines []string
		for _, m := range round.Matches {
			lines = append(lines, fmt.Sprintf("Court %d: %s vs %s",
				m.CourtNumber, teamLabel(names, m.TeamA), teamLabel(names, m.TeamB)))
		}
		roundText := fmt.Sprintf("Round %d\n%s", round.Number, strings.Join(lines, "\n"))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", roundText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatStandings creates the Slack message for a finished event. Per-match
// rating changes are rolled up into one net line per player.
func (s *Notifier) formatStandings(summary *event.EventSummary, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏁 %s finished! 🏁", summary.Event.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(summary.Changes) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No rating changes recorded.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	type standing struct {
		playerID string
		final    int
		delta    int
	}
	byPlayer := make(map[string]*standing)
	var order []string
	for _, c := range summary.Changes {
		st, ok := byPlayer[c.PlayerID]
		if !ok {
			st = &standing{playerID: c.PlayerID}
			byPlayer[c.PlayerID] = st
			order = append(order, c.PlayerID)
		}
		st.final = c.NewRating
		st.delta += c.Delta
	}

	standings := make([]*standing, 0, len(byPlayer))
	for _, id := range order {
		standings = append(standings, byPlayer[id])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].final > standings[j].final
	})

	var lines []string
	for _, st := range standings {
		sign := "+"
		if st.delta < 0 {
			sign = ""
		}
		lines = append(lines, fmt.Sprintf("• %s: %d (%s%d)", displayName(names, st.playerID), st.final, sign, st.delta))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the club rating table.
func (s *Notifier) formatLeaderboard(players []club.PlayerInfo) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Club Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players rated yet. Go play an americana!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var lines []string
	for i, p := range players {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		default:
			medal = fmt.Sprintf("%d.", rank)
		}
		name := p.Name
		if name == "" {
			name = p.ID
		}
		lines = append(lines, fmt.Sprintf("%s %s: %d (NTRP %s, %d games)", medal, name, p.Rating, p.NTRP, p.GamesPlayed))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
