package domain

import (
	"strings"
	"time"
)

// TicketChannelPrefix marks channels that belong to the ticket workflow.
const TicketChannelPrefix = "ticket-"

// TicketAction labels a lifecycle step written to the log channel.
type TicketAction string

const (
	TicketActionCreated TicketAction = "Created"
	TicketActionClosed  TicketAction = "Closed"
)

// TicketSession is the in-memory state of one open ticket channel.
type TicketSession struct {
	ChannelID   string
	ChannelName string
	GuildID     string
	// OwnerID and OwnerName are known only when the session was opened by the
	// creation flow. Sessions created lazily by the collector leave them empty.
	OwnerID   string
	OwnerName string
	OpenedAt  time.Time
	Entries   []TranscriptEntry
}

// TicketChannelName derives the channel name for a user's ticket.
func TicketChannelName(username string) string {
	return strings.ToLower(strings.ReplaceAll(TicketChannelPrefix+username, " ", "-"))
}

// IsTicketChannel reports whether a channel name follows the ticket convention.
func IsTicketChannel(channelName string) bool {
	return strings.HasPrefix(channelName, TicketChannelPrefix)
}

// OwnerNameFromChannel recovers the presumed owner's username from a ticket
// channel name. It is a heuristic: hyphens in the original username come back
// as spaces.
func OwnerNameFromChannel(channelName string) (string, bool) {
	if !IsTicketChannel(channelName) {
		return "", false
	}
	return strings.ReplaceAll(strings.TrimPrefix(channelName, TicketChannelPrefix), "-", " "), true
}
