package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform/platformtest"
)

var logNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func transcriptOfLength(t *testing.T, n int) []domain.TranscriptEntry {
	t.Helper()
	// "(12:00:00) u: " is 14 runes
	entry := domain.TranscriptEntry{At: logNow, Author: "u", Content: strings.Repeat("x", n-14)}
	require.Len(t, []rune(entry.String()), n)
	return []domain.TranscriptEntry{entry}
}

func TestBuildLogMessagesWithoutTranscript(t *testing.T) {
	msgs := BuildLogMessages(LogEntry{
		Actor:       domain.Actor{ID: "1", Username: "alice"},
		ChannelName: "ticket-alice",
		Action:      domain.TicketActionCreated,
	}, logNow)

	require.Len(t, msgs, 1)
	embed := msgs[0].Embeds[0]
	assert.Equal(t, "Ticket Created", embed.Title)
	assert.Equal(t, ColorGold, embed.Color)
	assert.Equal(t, "2024-05-01T12:00:00Z", embed.Timestamp)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "alice (1)", embed.Fields[0].Value)
	assert.Equal(t, "ticket-alice", embed.Fields[1].Value)
}

func TestBuildLogMessagesAtFieldLimit(t *testing.T) {
	msgs := BuildLogMessages(LogEntry{Action: domain.TicketActionClosed, Transcript: transcriptOfLength(t, fullLogLength)}, logNow)

	require.Len(t, msgs, 1)
	fields := msgs[0].Embeds[0].Fields
	require.Len(t, fields, 3)
	assert.Equal(t, "Chat Log", fields[2].Name)
	assert.Equal(t, maxLogFieldLength, utf8.RuneCountInString(fields[2].Value))
}

func TestBuildLogMessagesSplitsWhenFencedLogOverflows(t *testing.T) {
	msgs := BuildLogMessages(LogEntry{Action: domain.TicketActionClosed, Transcript: transcriptOfLength(t, fullLogLength+1)}, logNow)

	require.Len(t, msgs, 2)
	assert.Equal(t, "Chat Log (partial)", msgs[0].Embeds[0].Fields[2].Name)
}

func TestBuildLogMessagesSplitsLongTranscript(t *testing.T) {
	for _, n := range []int{maxLogFieldLength + 1, 2000, 5000} {
		transcript := transcriptOfLength(t, n)
		text := []rune(domain.RenderTranscript(transcript))

		msgs := BuildLogMessages(LogEntry{Action: domain.TicketActionClosed, Transcript: transcript}, logNow)

		require.Len(t, msgs, 2)
		fields := msgs[0].Embeds[0].Fields
		require.Len(t, fields, 3)
		assert.Equal(t, "Chat Log (partial)", fields[2].Name)
		assert.Equal(t, "```\n"+string(text[:partialLogLength])+"...\n```", fields[2].Value)
		assert.LessOrEqual(t, utf8.RuneCountInString(fields[2].Value), maxLogFieldLength)
		assert.Empty(t, msgs[1].Embeds)
		assert.Equal(t, "```\n"+string(text[partialLogLength:])+"\n```", msgs[1].Content)
	}
}

func TestBuildLogMessagesSplitsOnRunes(t *testing.T) {
	entries := make([]domain.TranscriptEntry, 0, 40)
	for i := 0; i < 40; i++ {
		entries = append(entries, domain.TranscriptEntry{At: logNow, Author: "Zoë", Content: strings.Repeat("é", 20)})
	}
	text := []rune(domain.RenderTranscript(entries))
	require.Greater(t, len(text), maxLogFieldLength)

	msgs := BuildLogMessages(LogEntry{Action: domain.TicketActionClosed, Transcript: entries}, logNow)
	require.Len(t, msgs, 2)

	field := msgs[0].Embeds[0].Fields[2].Value
	assert.LessOrEqual(t, utf8.RuneCountInString(field), maxLogFieldLength)
	head := strings.TrimSuffix(strings.TrimPrefix(field, "```\n"), "...\n```")
	tail := strings.TrimSuffix(strings.TrimPrefix(msgs[1].Content, "```\n"), "\n```")
	assert.Len(t, []rune(head), partialLogLength)
	assert.Equal(t, string(text), head+tail)
}

func newLogService(gw *platformtest.FakeGateway, logChannelID string) *TicketLogService {
	svc := NewTicketLogService(events.NewInMemoryDispatcher(), gw, zap.NewNop(), config.DiscordConfig{TicketLogChannelID: logChannelID})
	svc.now = func() time.Time { return logNow }
	return svc
}

func TestLogActionSkipsUnresolvableChannel(t *testing.T) {
	gw := platformtest.NewFakeGateway()
	entry := LogEntry{GuildID: "g1", Action: domain.TicketActionCreated}

	require.NoError(t, newLogService(gw, "").LogAction(context.Background(), entry))
	require.NoError(t, newLogService(gw, "missing").LogAction(context.Background(), entry))

	gw.AddChannel("g2", "log-elsewhere", "mod-log")
	require.NoError(t, newLogService(gw, "log-elsewhere").LogAction(context.Background(), entry))

	assert.Empty(t, gw.AllSent())
}

func TestLogActionSendsBothPartsInOrder(t *testing.T) {
	gw := platformtest.NewFakeGateway()
	gw.AddChannel("g1", "log", "mod-log")
	svc := newLogService(gw, "log")

	err := svc.LogAction(context.Background(), LogEntry{
		GuildID:    "g1",
		Action:     domain.TicketActionClosed,
		Transcript: transcriptOfLength(t, 3000),
	})
	require.NoError(t, err)

	sent := gw.Sent("log")
	require.Len(t, sent, 2)
	assert.NotEmpty(t, sent[0].Embeds)
	assert.NotEmpty(t, sent[1].Content)
}

func TestHandleTicketClosedRejectsForeignPayload(t *testing.T) {
	svc := newLogService(platformtest.NewFakeGateway(), "log")
	err := svc.handleTicketClosed(context.Background(), events.Event{Type: events.EventTicketClosed, Payload: "nope"})
	assert.Error(t, err)
}
