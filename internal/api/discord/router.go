// Package discord routes gateway events to the bot's handlers.
package discord

import (
	"context"
	"runtime/debug"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/api/discord/handlers"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/service"
)

// RouteConfig bundles dependencies for event routing.
type RouteConfig struct {
	Tickets  *handlers.TicketHandler
	Messages *handlers.MessageHandler
	Panels   *handlers.PanelHandler
	Gateway  platform.Gateway
	Prefix   string
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Timeout  time.Duration
}

// Router dispatches messages and component interactions.
type Router struct {
	cfg        RouteConfig
	logger     *zap.Logger
	commands   map[string]commandRoute
	components map[string]interactionRoute
}

// NewRouter registers the command and component routes.
func NewRouter(cfg RouteConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		cfg:        cfg,
		logger:     logger,
		commands:   make(map[string]commandRoute),
		components: make(map[string]interactionRoute),
	}

	r.command("ticketpanel", cfg.Panels.TicketPanel)
	r.command("applypanel", cfg.Panels.ApplyPanel)
	r.command("bothelp", cfg.Panels.BotHelp)

	r.component(service.CustomIDCreateTicket, cfg.Tickets.CreateTicket)
	r.component(service.CustomIDCloseTicket, cfg.Tickets.CloseTicket)
	return r
}

func (r *Router) command(name string, fn CommandFunc) {
	r.commands[name] = commandErrorHandling(name, r.logger, r.cfg.Metrics, fn)
}

func (r *Router) component(customID string, fn InteractionFunc) {
	r.components[customID] = interactionErrorHandling(customID, r.logger, r.cfg.Metrics, fn)
}

// Register attaches the router to session.
func (r *Router) Register(session *discordgo.Session) {
	session.AddHandler(r.onReady)
	session.AddHandler(r.onMessageCreate)
	session.AddHandler(r.onInteractionCreate)
}

func (r *Router) onReady(_ *discordgo.Session, ready *discordgo.Ready) {
	r.logger.Info("gateway ready",
		zap.String("user", ready.User.Username),
		zap.String("user_id", ready.User.ID),
		zap.Int("guilds", len(ready.Guilds)))
}

func (r *Router) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	ctx, cancel := withTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	msg := domain.InboundMessage{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Author:    actorFrom(m.Member, m.Author),
		Content:   m.Content,
		SentAt:    m.Timestamp,
	}
	if ch, err := r.cfg.Gateway.Channel(ctx, m.ChannelID); err == nil {
		msg.ChannelName = ch.Name
	}
	r.HandleMessage(ctx, msg)
}

func (r *Router) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	ctx, cancel := withTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	r.HandleInteraction(ctx, &handlers.Interaction{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		CustomID:  i.MessageComponentData().CustomID,
		Actor:     actorFrom(i.Member, i.User),
		Responder: platform.NewInteractionResponder(s, i.Interaction),
	})
}

// HandleMessage captures msg into its ticket transcript, then runs it as a
// command. Both steps always run, in that order.
func (r *Router) HandleMessage(ctx context.Context, msg domain.InboundMessage) {
	if msg.Author.Bot {
		return
	}
	defer r.recoverEvent("message_create", msg.ChannelID)
	start := time.Now()
	r.cfg.Messages.Collect(ctx, msg)
	r.cfg.Metrics.RecordEvent(observability.KindMessage, "collect", time.Since(start))

	name, ok := ParseCommand(r.cfg.Prefix, msg.Content)
	if !ok {
		return
	}
	fn, ok := r.commands[name]
	if !ok {
		return
	}
	fn(ctx, &handlers.Command{
		Name:      name,
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		Author:    msg.Author,
	})
}

// HandleInteraction routes a component activation by its custom id. Unknown
// ids are ignored.
func (r *Router) HandleInteraction(ctx context.Context, in *handlers.Interaction) {
	defer r.recoverEvent("interaction_create", in.ChannelID)
	fn, ok := r.components[in.CustomID]
	if !ok {
		r.logger.Debug("unknown component", zap.String("custom_id", in.CustomID))
		return
	}
	fn(ctx, in)
}

// recoverEvent keeps a panicking gateway event from taking the process down.
// discordgo runs handlers on bare goroutines.
func (r *Router) recoverEvent(event, channelID string) {
	if rec := recover(); rec != nil {
		r.logger.Error("panic recovered",
			zap.String("event", event),
			zap.String("channel_id", channelID),
			zap.Any("panic", rec),
			zap.ByteString("stack", debug.Stack()))
	}
}

// ParseCommand extracts the command name that directly follows prefix.
// Anything after the name is ignored.
func ParseCommand(prefix, content string) (string, bool) {
	rest, ok := strings.CutPrefix(content, prefix)
	if prefix == "" || !ok {
		return "", false
	}
	if first, _ := utf8.DecodeRuneInString(rest); unicode.IsSpace(first) {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// actorFrom builds an Actor from a guild member, falling back to the bare
// user for direct messages. Message events carry a member without its user.
func actorFrom(member *discordgo.Member, user *discordgo.User) domain.Actor {
	if member != nil && member.User != nil {
		user = member.User
	}
	if user == nil {
		return domain.Actor{}
	}
	actor := domain.Actor{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.Username,
		Bot:         user.Bot,
	}
	if user.GlobalName != "" {
		actor.DisplayName = user.GlobalName
	}
	if member != nil {
		if member.Nick != "" {
			actor.DisplayName = member.Nick
		}
		actor.RoleIDs = append([]string(nil), member.Roles...)
	}
	return actor
}
