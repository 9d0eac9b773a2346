package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/court-call/internal/event"
	"github.com/mauv0809/court-call/internal/metrics"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestFormatStandings_RollsUpPerPlayer(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	summary := &event.EventSummary{
		Event: event.Event{Name: "Tuesday Americana"},
		Changes: []event.RatingChange{
			{PlayerID: "U1", OldRating: 1000, Delta: 8, NewRating: 1008},
			{PlayerID: "U2", OldRating: 1000, Delta: -8, NewRating: 992},
			{PlayerID: "U1", OldRating: 1008, Delta: 4, NewRating: 1012},
		},
	}

	msg := notifier.formatStandings(summary, map[string]string{"U1": "Alice", "U2": "Bob"})
	// Header plus one rolled-up standings section.
	require.Len(t, msg.Blocks.BlockSet, 2)

	section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "Alice: 1012 (+12)")
	assert.Contains(t, section.Text.Text, "Bob: 992 (-8)")
}

func TestFormatSchedule_ListsRounds(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	detail := &event.EventDetail{
		Event: event.Event{Name: "Tuesday Americana", CourtsCount: 1, RoundsPlanned: 1},
		Rounds: []event.Round{
			{Number: 1, Matches: []event.Match{
				{CourtNumber: 1, TeamA: [2]string{"U1", "U2"}, TeamB: [2]string{"U3", "U4"}},
			}},
		},
	}

	msg := notifier.formatSchedule(detail, map[string]string{"U1": "Alice"})
	// Header, details, one round section.
	require.Len(t, msg.Blocks.BlockSet, 3)

	section, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "Round 1")
	assert.Contains(t, section.Text.Text, "Alice & U2 vs U3 & U4")
}
