package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
)

const (
	// maxLogFieldLength is the platform limit on an embed field value.
	maxLogFieldLength = 1024

	fenceOpen       = "```\n"
	fenceClose      = "\n```"
	continuedMarker = "..."

	// fullLogLength is the longest transcript that fits one fenced field.
	fullLogLength = maxLogFieldLength - len(fenceOpen) - len(fenceClose)
	// partialLogLength is the head kept in the field when the transcript is split.
	partialLogLength = fullLogLength - len(continuedMarker)
)

// LogEntry is one ticket action written to the log channel.
type LogEntry struct {
	GuildID     string
	Actor       domain.Actor
	ChannelName string
	Action      domain.TicketAction
	Transcript  []domain.TranscriptEntry
}

// TicketLogService writes ticket lifecycle events to the configured log
// channel. Logging is best effort: an unresolvable log channel is skipped.
type TicketLogService struct {
	dispatcher events.Dispatcher
	gateway    platform.Gateway
	logger     *zap.Logger
	cfg        config.DiscordConfig
	now        func() time.Time
}

// NewTicketLogService creates the service.
func NewTicketLogService(dispatcher events.Dispatcher, gateway platform.Gateway, logger *zap.Logger, cfg config.DiscordConfig) *TicketLogService {
	return &TicketLogService{
		dispatcher: dispatcher,
		gateway:    gateway,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// RegisterHandlers subscribes to events.
func (n *TicketLogService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
}

func (n *TicketLogService) handleTicketCreated(ctx context.Context, event events.Event) error {
	return n.LogAction(ctx, LogEntry{
		GuildID:     event.GuildID,
		Actor:       event.Actor,
		ChannelName: event.ChannelName,
		Action:      domain.TicketActionCreated,
	})
}

func (n *TicketLogService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return n.LogAction(ctx, LogEntry{
		GuildID:     event.GuildID,
		Actor:       event.Actor,
		ChannelName: event.ChannelName,
		Action:      domain.TicketActionClosed,
		Transcript:  payload.Transcript,
	})
}

// LogAction sends the log messages for entry. It returns nil without sending
// when the log channel is unset or does not resolve within the entry's guild.
func (n *TicketLogService) LogAction(ctx context.Context, entry LogEntry) error {
	channel, ok := n.resolveLogChannel(ctx, entry.GuildID)
	if !ok {
		return nil
	}
	for _, msg := range BuildLogMessages(entry, n.now()) {
		if _, err := n.gateway.SendMessage(ctx, channel.ID, msg); err != nil {
			return fmt.Errorf("send ticket log: %w", err)
		}
	}
	return nil
}

func (n *TicketLogService) resolveLogChannel(ctx context.Context, guildID string) (*discordgo.Channel, bool) {
	if n.cfg.TicketLogChannelID == "" {
		return nil, false
	}
	channel, err := n.gateway.Channel(ctx, n.cfg.TicketLogChannelID)
	if err != nil {
		n.logger.Debug("ticket log channel unavailable",
			zap.String("channel_id", n.cfg.TicketLogChannelID),
			zap.Error(err))
		return nil, false
	}
	if guildID != "" && channel.GuildID != "" && channel.GuildID != guildID {
		return nil, false
	}
	return channel, true
}

// BuildLogMessages formats entry. A transcript that does not fit one fenced
// embed field is split into the embed with a truncated chat log and a
// follow-up message with the remainder, so exactly two messages are produced
// in that case. Every field value stays within maxLogFieldLength runes.
func BuildLogMessages(entry LogEntry, now time.Time) []*discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:     "Ticket " + string(entry.Action),
		Color:     ColorGold,
		Timestamp: now.UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: entry.Actor.LogLabel()},
			{Name: "Channel", Value: entry.ChannelName},
		},
	}

	if len(entry.Transcript) == 0 {
		return []*discordgo.MessageSend{{Embeds: []*discordgo.MessageEmbed{embed}}}
	}

	text := []rune(domain.RenderTranscript(entry.Transcript))
	if len(text) <= fullLogLength {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Chat Log",
			Value: codeBlock(string(text)),
		})
		return []*discordgo.MessageSend{{Embeds: []*discordgo.MessageEmbed{embed}}}
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Chat Log (partial)",
		Value: fenceOpen + string(text[:partialLogLength]) + continuedMarker + fenceClose,
	})
	return []*discordgo.MessageSend{
		{Embeds: []*discordgo.MessageEmbed{embed}},
		{Content: codeBlock(string(text[partialLogLength:]))},
	}
}

func codeBlock(s string) string {
	return fenceOpen + s + fenceClose
}
