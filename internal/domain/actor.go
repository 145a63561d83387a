package domain

import "time"

// Actor is the platform member that triggered a handler.
type Actor struct {
	ID          string
	Username    string
	DisplayName string
	RoleIDs     []string
	Bot         bool
}

// HasRole reports whether the actor holds roleID.
func (a Actor) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range a.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Mention returns the platform mention markup for the actor.
func (a Actor) Mention() string {
	return "<@" + a.ID + ">"
}

// LogLabel renders the actor as "username (id)" for log embeds.
func (a Actor) LogLabel() string {
	return a.Username + " (" + a.ID + ")"
}

// InboundMessage is a message observed in a guild channel.
type InboundMessage struct {
	GuildID     string
	ChannelID   string
	ChannelName string
	Author      Actor
	Content     string
	SentAt      time.Time
}
