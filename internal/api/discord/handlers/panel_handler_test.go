package handlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bot/internal/api/discord/handlers"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/platform/platformtest"
	"github.com/spec-kit/ticket-bot/internal/service"
)

var panelCfg = config.PanelConfig{
	FooterText:      "Developer = @shannjockey!",
	ThumbnailURL:    "https://i.imgur.com/Qys8KcJ.png",
	InGameApplyURL:  "https://example.com/ingame",
	DiscordApplyURL: "https://example.com/discord",
}

func TestTicketPanel(t *testing.T) {
	gw := platformtest.NewFakeGateway()
	h := handlers.NewPanelHandler(gw, panelCfg, "!ss")

	require.NoError(t, h.TicketPanel(context.Background(), &handlers.Command{ChannelID: "10"}))

	sent := gw.Sent("10")
	require.Len(t, sent, 1)
	embed := sent[0].Embeds[0]
	assert.Equal(t, "🎟️ Support Tickets", embed.Title)
	assert.Equal(t, service.ColorOrange, embed.Color)
	assert.Equal(t, panelCfg.FooterText, embed.Footer.Text)
	assert.Equal(t, panelCfg.ThumbnailURL, embed.Thumbnail.URL)

	require.Len(t, sent[0].Components, 1)
	row := sent[0].Components[0].(discordgo.ActionsRow)
	button := row.Components[0].(discordgo.Button)
	assert.Equal(t, service.CustomIDCreateTicket, button.CustomID)
}

func TestApplyPanelIncludesConfiguredLinks(t *testing.T) {
	gw := platformtest.NewFakeGateway()
	h := handlers.NewPanelHandler(gw, panelCfg, "!ss")

	require.NoError(t, h.ApplyPanel(context.Background(), &handlers.Command{ChannelID: "10"}))

	embed := gw.Sent("10")[0].Embeds[0]
	assert.Equal(t, service.ColorBlue, embed.Color)
	assert.Contains(t, embed.Description, "(https://example.com/ingame)")
	assert.Contains(t, embed.Description, "(https://example.com/discord)")
	assert.Empty(t, gw.Sent("10")[0].Components)
}

func TestBotHelpUsesPrefix(t *testing.T) {
	gw := platformtest.NewFakeGateway()
	h := handlers.NewPanelHandler(gw, config.PanelConfig{}, "?")

	require.NoError(t, h.BotHelp(context.Background(), &handlers.Command{ChannelID: "10"}))

	embed := gw.Sent("10")[0].Embeds[0]
	assert.Equal(t, service.ColorGreen, embed.Color)
	assert.Contains(t, embed.Description, "**?applypanel**")
	assert.Contains(t, embed.Description, "**?ticketpanel**")
	assert.Nil(t, embed.Footer)
	assert.Nil(t, embed.Thumbnail)
}

func TestPanelSendFailure(t *testing.T) {
	gw := platformtest.NewFakeGateway()
	gw.SendErr = errors.New("missing access")
	h := handlers.NewPanelHandler(gw, panelCfg, "!ss")

	err := h.BotHelp(context.Background(), &handlers.Command{ChannelID: "10"})
	assert.ErrorIs(t, err, gw.SendErr)
}
