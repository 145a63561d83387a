package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/persistence"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/repository"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// User-facing replies of the ticket workflow.
const (
	MsgTicketAlreadyOpen = "❌ You already have a ticket open."
	MsgTicketCreated     = "✅ Ticket created: "
	MsgClosingTicket     = "Closing ticket..."
)

const (
	viewAndSend = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
)

// TicketService coordinates the ticket lifecycle: transcript capture, opening
// and closing ticket channels.
type TicketService struct {
	gateway    platform.Gateway
	sessions   repository.TranscriptRepository
	locker     persistence.Locker
	dispatcher events.Dispatcher
	cfg        config.DiscordConfig
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Gateway     platform.Gateway
	SessionRepo repository.TranscriptRepository
	Locker      persistence.Locker
	Dispatcher  events.Dispatcher
	Config      config.DiscordConfig
	Logger      *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// OpenTicketInput describes a "Create Ticket" activation.
type OpenTicketInput struct {
	GuildID   string
	Actor     domain.Actor
	Responder platform.Responder
}

// CloseTicketInput describes a "Close Ticket" activation.
type CloseTicketInput struct {
	GuildID   string
	ChannelID string
	Actor     domain.Actor
	Responder platform.Responder
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		gateway:    deps.Gateway,
		sessions:   deps.SessionRepo,
		locker:     deps.Locker,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		logger:     logger,
		now:        now,
	}
}

// RecordMessage appends a message to its ticket's transcript. Messages from
// bots and from channels outside the ticket naming convention are ignored; the
// boolean reports whether the message was recorded.
func (s *TicketService) RecordMessage(ctx context.Context, msg domain.InboundMessage) (bool, error) {
	if msg.Author.Bot || !domain.IsTicketChannel(msg.ChannelName) {
		return false, nil
	}

	at := msg.SentAt
	if at.IsZero() {
		at = s.now()
	}
	author := msg.Author.DisplayName
	if author == "" {
		author = msg.Author.Username
	}

	entry := domain.TranscriptEntry{At: at, Author: author, Content: msg.Content}
	if err := s.sessions.Append(ctx, msg.ChannelID, msg.ChannelName, entry); err != nil {
		return false, fmt.Errorf("record message in %s: %w", msg.ChannelName, err)
	}
	return true, nil
}

// OpenTicket creates the private ticket channel for the invoking member.
func (s *TicketService) OpenTicket(ctx context.Context, in OpenTicketInput) (*domain.TicketSession, error) {
	name := domain.TicketChannelName(in.Actor.Username)

	release, err := s.locker.Acquire(ctx, in.GuildID+"/"+name)
	if errors.Is(err, persistence.ErrLockHeld) {
		return nil, apperrors.NewConflict(MsgTicketAlreadyOpen, map[string]any{"channel": name})
	}
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", name, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release creation lock", zap.String("channel", name), zap.Error(err))
		}
	}()

	exists, err := s.channelExists(ctx, in.GuildID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict(MsgTicketAlreadyOpen, map[string]any{"channel": name})
	}

	staffRole, err := s.gateway.Role(ctx, in.GuildID, s.cfg.StaffRoleID)
	if err != nil {
		return nil, apperrors.NewMissingConfiguration("staff role", err)
	}

	channel, err := s.gateway.CreateChannel(ctx, in.GuildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             s.cfg.TicketCategoryID,
		PermissionOverwrites: ticketOverwrites(in.GuildID, in.Actor.ID, staffRole.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("create ticket channel: %w", err)
	}

	session := domain.TicketSession{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		GuildID:     in.GuildID,
		OwnerID:     in.Actor.ID,
		OwnerName:   in.Actor.Username,
		OpenedAt:    s.now(),
	}
	if err := s.sessions.Open(ctx, session); err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}

	if _, err := s.gateway.SendMessage(ctx, channel.ID, WelcomeMessage(in.Actor, staffRole.ID)); err != nil {
		return nil, fmt.Errorf("send welcome message: %w", err)
	}
	if err := in.Responder.Ephemeral(ctx, MsgTicketCreated+platform.ChannelMention(channel.ID)); err != nil {
		return nil, err
	}

	s.logger.Info("ticket opened",
		zap.String("channel_id", channel.ID),
		zap.String("channel", channel.Name),
		zap.String("user_id", in.Actor.ID))

	s.publish(ctx, events.Event{
		Type:        events.EventTicketCreated,
		GuildID:     in.GuildID,
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		Actor:       in.Actor,
		Payload: events.TicketCreatedPayload{
			OwnerID:   in.Actor.ID,
			OwnerName: in.Actor.Username,
		},
	})
	return &session, nil
}

// CloseTicket checks the invoker may close the channel, consumes its
// transcript, publishes the closing event and deletes the channel. It returns
// the transcript that was logged, closing record included.
func (s *TicketService) CloseTicket(ctx context.Context, in CloseTicketInput) ([]domain.TranscriptEntry, error) {
	channel, err := s.gateway.Channel(ctx, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("resolve ticket channel: %w", err)
	}

	owner, err := auth.AuthorizeTicketClose(in.Actor, channel.Name, s.cfg.StaffRoleID)
	if err != nil {
		return nil, err
	}

	if err := in.Responder.Ephemeral(ctx, MsgClosingTicket); err != nil {
		return nil, err
	}

	// Pop is the single consumption point of the buffer.
	session, _, err := s.sessions.Pop(ctx, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("pop transcript: %w", err)
	}
	transcript := append(session.Entries, domain.ClosingEntry(s.now()))

	s.publish(ctx, events.Event{
		Type:        events.EventTicketClosed,
		GuildID:     in.GuildID,
		ChannelID:   in.ChannelID,
		ChannelName: channel.Name,
		Actor:       in.Actor,
		Payload: events.TicketClosedPayload{
			OwnerName:  owner,
			Transcript: transcript,
		},
	})

	if err := s.gateway.DeleteChannel(ctx, in.ChannelID); err != nil {
		return transcript, fmt.Errorf("delete ticket channel: %w", err)
	}

	s.logger.Info("ticket closed",
		zap.String("channel_id", in.ChannelID),
		zap.String("channel", channel.Name),
		zap.String("closed_by", in.Actor.ID),
		zap.Int("transcript_len", len(transcript)))
	return transcript, nil
}

func (s *TicketService) channelExists(ctx context.Context, guildID, name string) (bool, error) {
	channels, err := s.gateway.GuildChannels(ctx, guildID)
	if err != nil {
		return false, fmt.Errorf("list guild channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("ticket event subscriber failed",
			zap.String("event_type", string(event.Type)),
			zap.String("channel", event.ChannelName),
			zap.Error(err))
	}
}

// ticketOverwrites hides the channel from @everyone (whose role id equals the
// guild id) and opens it to the owner and staff.
func ticketOverwrites(guildID, userID, staffRoleID string) []*discordgo.PermissionOverwrite {
	return []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: userID, Type: discordgo.PermissionOverwriteTypeMember, Allow: viewAndSend},
		{ID: staffRoleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: viewAndSend},
	}
}
