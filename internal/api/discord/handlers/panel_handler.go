package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/service"
)

// PanelHandler posts the static panels requested by prefix commands.
type PanelHandler struct {
	gateway platform.Gateway
	cfg     config.PanelConfig
	prefix  string
}

// NewPanelHandler constructs handler.
func NewPanelHandler(gateway platform.Gateway, cfg config.PanelConfig, prefix string) *PanelHandler {
	return &PanelHandler{gateway: gateway, cfg: cfg, prefix: prefix}
}

// TicketPanel posts the support panel with the Create Ticket button.
func (h *PanelHandler) TicketPanel(ctx context.Context, cmd *Command) error {
	embed := h.decorate(&discordgo.MessageEmbed{
		Title:       "🎟️ Support Tickets",
		Description: "Need help? Click the button below to create a private ticket. Staff will assist you shortly.",
		Color:       service.ColorOrange,
	})
	return h.send(ctx, cmd.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{service.CreateTicketButton()}},
		},
	})
}

// ApplyPanel posts the staff application links.
func (h *PanelHandler) ApplyPanel(ctx context.Context, cmd *Command) error {
	var b strings.Builder
	b.WriteString("Click the link(s) below to apply!\n")
	b.WriteString("***Requirements:***\n")
	b.WriteString("• 13+ Years old\n")
	b.WriteString("• SPaG at all times\n")
	if h.cfg.InGameApplyURL != "" {
		fmt.Fprintf(&b, "\n📌 **In-Game Application**\n[__Apply Here__](%s)\n", h.cfg.InGameApplyURL)
	}
	if h.cfg.DiscordApplyURL != "" {
		fmt.Fprintf(&b, "\n📌 **Discord Application**\n[__Apply Here__](%s)\n", h.cfg.DiscordApplyURL)
	}

	embed := h.decorate(&discordgo.MessageEmbed{
		Title:       "📝 Skygen/Discord Staff Application!",
		Description: b.String(),
		Color:       service.ColorBlue,
	})
	return h.send(ctx, cmd.ChannelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}})
}

// BotHelp lists the available commands.
func (h *PanelHandler) BotHelp(ctx context.Context, cmd *Command) error {
	description := fmt.Sprintf("**%sapplypanel** — Sends the Skygen/Discord staff application panel.\n"+
		"**%sticketpanel** — Sends a ticket creation panel.\n\n"+
		"More commands coming soon!", h.prefix, h.prefix)

	embed := h.decorate(&discordgo.MessageEmbed{
		Title:       "🛠️ Bot Help",
		Description: description,
		Color:       service.ColorGreen,
	})
	return h.send(ctx, cmd.ChannelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}})
}

func (h *PanelHandler) decorate(embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	if h.cfg.FooterText != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: h.cfg.FooterText}
	}
	if h.cfg.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: h.cfg.ThumbnailURL}
	}
	return embed
}

func (h *PanelHandler) send(ctx context.Context, channelID string, msg *discordgo.MessageSend) error {
	if _, err := h.gateway.SendMessage(ctx, channelID, msg); err != nil {
		return fmt.Errorf("send panel: %w", err)
	}
	return nil
}
