package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// DiscordGateway implements Gateway on top of a discordgo session. Reads go
// through the session state cache first and fall back to REST.
type DiscordGateway struct {
	session *discordgo.Session
}

// NewDiscordGateway wraps session.
func NewDiscordGateway(session *discordgo.Session) *DiscordGateway {
	return &DiscordGateway{session: session}
}

func (g *DiscordGateway) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if channelID == "" {
		return nil, ErrNotFound
	}
	if g.session.State != nil {
		if ch, err := g.session.State.Channel(channelID); err == nil {
			return ch, nil
		}
	}
	ch, err := g.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapRESTError("channel "+channelID, err)
	}
	return ch, nil
}

func (g *DiscordGateway) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	channels, err := g.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapRESTError("guild channels "+guildID, err)
	}
	return channels, nil
}

func (g *DiscordGateway) Role(ctx context.Context, guildID, roleID string) (*discordgo.Role, error) {
	if roleID == "" {
		return nil, ErrNotFound
	}
	if g.session.State != nil {
		if role, err := g.session.State.Role(guildID, roleID); err == nil {
			return role, nil
		}
	}
	roles, err := g.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapRESTError("guild roles "+guildID, err)
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role, nil
		}
	}
	return nil, fmt.Errorf("role %s: %w", roleID, ErrNotFound)
}

func (g *DiscordGateway) CreateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	ch, err := g.session.GuildChannelCreateComplex(guildID, data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapRESTError("create channel "+data.Name, err)
	}
	return ch, nil
}

func (g *DiscordGateway) DeleteChannel(ctx context.Context, channelID string) error {
	if _, err := g.session.ChannelDelete(channelID, discordgo.WithContext(ctx)); err != nil {
		return wrapRESTError("delete channel "+channelID, err)
	}
	return nil
}

func (g *DiscordGateway) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	sent, err := g.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapRESTError("send message to "+channelID, err)
	}
	return sent, nil
}

// Ready reports whether the gateway connection finished its handshake.
func (g *DiscordGateway) Ready() bool {
	return g.session.DataReady
}

func wrapRESTError(op string, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// InteractionResponder answers one interaction. The first reply uses the
// interaction response, later replies become follow-up messages.
type InteractionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu        sync.Mutex
	responded bool
}

// NewInteractionResponder builds a responder for interaction.
func NewInteractionResponder(session *discordgo.Session, interaction *discordgo.Interaction) *InteractionResponder {
	return &InteractionResponder{session: session, interaction: interaction}
}

func (r *InteractionResponder) Ephemeral(ctx context.Context, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.responded {
		err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("respond to interaction: %w", err)
		}
		r.responded = true
		return nil
	}

	_, err := r.session.FollowupMessageCreate(r.interaction, false, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("follow up interaction: %w", err)
	}
	return nil
}
