package discord

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/api/discord/handlers"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/persistence"
	"github.com/spec-kit/ticket-bot/internal/platform/platformtest"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

const (
	guildID     = "g1"
	staffRoleID = "500"
	panelChanID = "10"
)

var alice = domain.Actor{ID: "1", Username: "alice", DisplayName: "Alice"}

type routerFixture struct {
	gw       *platformtest.FakeGateway
	sessions repository.TranscriptRepository
	metrics  *observability.Metrics
	router   *Router
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	gw := platformtest.NewFakeGateway()
	gw.AddRole(guildID, staffRoleID, "Staff")
	gw.AddChannel(guildID, panelChanID, "general")

	sessions := repository.NewTranscriptRepository()
	ticketService := service.NewTicketService(service.TicketDependencies{
		Gateway:     gw,
		SessionRepo: sessions,
		Locker:      persistence.NewLocalLocker(time.Minute),
		Dispatcher:  events.NewInMemoryDispatcher(),
		Config:      config.DiscordConfig{StaffRoleID: staffRoleID},
	})
	metrics := observability.NewMetrics()

	router := NewRouter(RouteConfig{
		Tickets:  handlers.NewTicketHandler(ticketService),
		Messages: handlers.NewMessageHandler(ticketService, zap.NewNop()),
		Panels:   handlers.NewPanelHandler(gw, config.PanelConfig{FooterText: "footer"}, "!ss"),
		Gateway:  gw,
		Prefix:   "!ss",
		Logger:   zap.NewNop(),
		Metrics:  metrics,
		Timeout:  time.Second,
	})
	return &routerFixture{gw: gw, sessions: sessions, metrics: metrics, router: router}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		content string
		name    string
		ok      bool
	}{
		{"!ssticketpanel", "ticketpanel", true},
		{"!ssbothelp please", "bothelp", true},
		{"!ss ticketpanel", "", false},
		{"!ss", "", false},
		{"hello !ssbothelp", "", false},
		{"?ssbothelp", "", false},
		{"!ss\u00a0", "", false},
		{"!ss\u2003x", "", false},
		{"!ss\u3000", "", false},
		{"!ssbothelp\u00a0now", "bothelp", true},
	}
	for _, tc := range cases {
		t.Run(tc.content, func(t *testing.T) {
			name, ok := ParseCommand("!ss", tc.content)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.name, name)
		})
	}
}

func TestHandleMessageDispatchesPanelCommand(t *testing.T) {
	f := newRouterFixture(t)

	f.router.HandleMessage(context.Background(), domain.InboundMessage{
		GuildID: guildID, ChannelID: panelChanID, ChannelName: "general",
		Author: alice, Content: "!ssticketpanel",
	})

	sent := f.gw.Sent(panelChanID)
	require.Len(t, sent, 1)
	assert.Equal(t, "🎟️ Support Tickets", sent[0].Embeds[0].Title)
	assert.Equal(t, int64(1), f.metrics.EventCount(observability.KindCommand, "ticketpanel"))
}

func TestHandleMessageWithUnicodeSpaceAfterPrefix(t *testing.T) {
	f := newRouterFixture(t)
	f.gw.AddChannel(guildID, "77", "ticket-alice")

	for _, content := range []string{"!ss\u00a0", "!ss\u2003"} {
		assert.NotPanics(t, func() {
			f.router.HandleMessage(context.Background(), domain.InboundMessage{
				GuildID: guildID, ChannelID: "77", ChannelName: "ticket-alice",
				Author: alice, Content: content,
			})
		})
	}

	session, ok, err := f.sessions.Get(context.Background(), "77")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, session.Entries, 2)
	assert.Empty(t, f.gw.AllSent())
}

func TestHandleInteractionRecoversPanickingHandler(t *testing.T) {
	f := newRouterFixture(t)

	assert.NotPanics(t, func() {
		f.router.HandleInteraction(context.Background(), &handlers.Interaction{
			GuildID: guildID, ChannelID: panelChanID, CustomID: service.CustomIDCreateTicket,
			Actor: alice, Responder: nil,
		})
	})
}

func TestHandleMessageIgnoresUnknownCommand(t *testing.T) {
	f := newRouterFixture(t)

	f.router.HandleMessage(context.Background(), domain.InboundMessage{
		GuildID: guildID, ChannelID: panelChanID, ChannelName: "general",
		Author: alice, Content: "!ssnope",
	})

	assert.Empty(t, f.gw.AllSent())
}

func TestHandleMessageCapturesTicketCommandsBeforeRunningThem(t *testing.T) {
	f := newRouterFixture(t)
	f.gw.AddChannel(guildID, "77", "ticket-alice")

	f.router.HandleMessage(context.Background(), domain.InboundMessage{
		GuildID: guildID, ChannelID: "77", ChannelName: "ticket-alice",
		Author: alice, Content: "!ssbothelp", SentAt: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
	})

	session, ok, err := f.sessions.Get(context.Background(), "77")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, session.Entries, 1)
	assert.Equal(t, "(09:30:00) Alice: !ssbothelp", session.Entries[0].String())
	require.Len(t, f.gw.Sent("77"), 1)
	assert.Equal(t, "🛠️ Bot Help", f.gw.Sent("77")[0].Embeds[0].Title)
}

func TestHandleMessageSkipsBots(t *testing.T) {
	f := newRouterFixture(t)
	bot := domain.Actor{ID: "9", Username: "bot", Bot: true}

	f.router.HandleMessage(context.Background(), domain.InboundMessage{
		GuildID: guildID, ChannelID: panelChanID, ChannelName: "ticket-x",
		Author: bot, Content: "!ssbothelp",
	})

	assert.Empty(t, f.gw.AllSent())
	count, err := f.sessions.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandleInteractionRoutesCreateTicket(t *testing.T) {
	f := newRouterFixture(t)
	responder := &platformtest.FakeResponder{}

	f.router.HandleInteraction(context.Background(), &handlers.Interaction{
		GuildID: guildID, ChannelID: panelChanID, CustomID: service.CustomIDCreateTicket,
		Actor: alice, Responder: responder,
	})

	require.Len(t, f.gw.Created(), 1)
	assert.Equal(t, "ticket-alice", f.gw.Created()[0].Name)
	require.Len(t, responder.Messages(), 1)
	assert.True(t, strings.HasPrefix(responder.Messages()[0], service.MsgTicketCreated))
}

func TestHandleInteractionRepliesWithDomainError(t *testing.T) {
	f := newRouterFixture(t)
	responder := &platformtest.FakeResponder{}

	f.router.HandleInteraction(context.Background(), &handlers.Interaction{
		GuildID: guildID, ChannelID: panelChanID, CustomID: service.CustomIDCloseTicket,
		Actor: alice, Responder: responder,
	})

	assert.Equal(t, []string{"This is not a ticket channel."}, responder.Messages())
	assert.True(t, f.gw.HasChannel(panelChanID))
	assert.Equal(t, int64(1), f.metrics.EventCount(observability.KindInteraction, service.CustomIDCloseTicket))
}

func TestHandleInteractionHidesInternalErrors(t *testing.T) {
	f := newRouterFixture(t)
	f.gw.CreateErr = errors.New("HTTP 403 Forbidden: Missing Permissions")
	responder := &platformtest.FakeResponder{}

	f.router.HandleInteraction(context.Background(), &handlers.Interaction{
		GuildID: guildID, ChannelID: panelChanID, CustomID: service.CustomIDCreateTicket,
		Actor: alice, Responder: responder,
	})

	assert.Equal(t, []string{apperrors.GenericFailureMessage}, responder.Messages())
}

func TestHandleInteractionIgnoresUnknownCustomID(t *testing.T) {
	f := newRouterFixture(t)
	responder := &platformtest.FakeResponder{}

	f.router.HandleInteraction(context.Background(), &handlers.Interaction{
		GuildID: guildID, CustomID: "other:button", Actor: alice, Responder: responder,
	})

	assert.Empty(t, responder.Messages())
	assert.Empty(t, f.gw.AllSent())
}

func TestInteractionErrorHandlingRecoversPanics(t *testing.T) {
	responder := &platformtest.FakeResponder{}
	handler := interactionErrorHandling("boom", zap.NewNop(), nil, func(context.Context, *handlers.Interaction) error {
		panic("unexpected")
	})

	assert.NotPanics(t, func() {
		handler(context.Background(), &handlers.Interaction{Responder: responder})
	})
	assert.Equal(t, []string{apperrors.GenericFailureMessage}, responder.Messages())
}

func TestActorFrom(t *testing.T) {
	user := &discordgo.User{ID: "1", Username: "alice", GlobalName: "Alice G"}

	t.Run("member nick wins", func(t *testing.T) {
		actor := actorFrom(&discordgo.Member{Nick: "Ali", Roles: []string{staffRoleID}}, user)
		assert.Equal(t, "Ali", actor.DisplayName)
		assert.Equal(t, "alice", actor.Username)
		assert.True(t, actor.HasRole(staffRoleID))
	})

	t.Run("global name without member", func(t *testing.T) {
		actor := actorFrom(nil, user)
		assert.Equal(t, "Alice G", actor.DisplayName)
		assert.Empty(t, actor.RoleIDs)
	})

	t.Run("member user preferred", func(t *testing.T) {
		actor := actorFrom(&discordgo.Member{User: &discordgo.User{ID: "2", Username: "bob"}}, nil)
		assert.Equal(t, "2", actor.ID)
		assert.Equal(t, "bob", actor.DisplayName)
	})

	t.Run("nothing", func(t *testing.T) {
		assert.Equal(t, domain.Actor{}, actorFrom(nil, nil))
	})
}
