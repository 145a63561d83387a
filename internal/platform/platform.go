// Package platform describes the chat-platform capabilities the ticket
// workflow depends on, and adapts them to a discordgo session.
package platform

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// ErrNotFound is returned when a channel, role or guild does not resolve.
var ErrNotFound = errors.New("platform resource not found")

// Gateway is the subset of the platform API used by the bot.
type Gateway interface {
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
	Role(ctx context.Context, guildID, roleID string) (*discordgo.Role, error)
	CreateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	Ready() bool
}

// Responder replies to the member who triggered an interaction.
type Responder interface {
	// Ephemeral sends a message only the invoker can see.
	Ephemeral(ctx context.Context, content string) error
}

// ChannelMention renders a clickable channel reference.
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// RoleMention renders a role ping.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}
