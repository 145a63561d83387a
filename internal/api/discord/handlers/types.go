package handlers

import (
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
)

// Interaction is an activation of an interactive control.
type Interaction struct {
	GuildID   string
	ChannelID string
	CustomID  string
	Actor     domain.Actor
	Responder platform.Responder
}

// Command is a prefix command parsed from a channel message.
type Command struct {
	Name      string
	GuildID   string
	ChannelID string
	Author    domain.Actor
}
