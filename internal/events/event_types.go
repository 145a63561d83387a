package events

import (
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketClosed  EventType = "ticket_closed"
)

// Event represents a ticket lifecycle event emitted by the ticket service.
type Event struct {
	ID          string       `json:"id"`
	Type        EventType    `json:"type"`
	GuildID     string       `json:"guild_id"`
	ChannelID   string       `json:"channel_id"`
	ChannelName string       `json:"channel_name"`
	Actor       domain.Actor `json:"actor"`
	Timestamp   time.Time    `json:"timestamp"`
	Payload     interface{}  `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_name"`
}

// TicketClosedPayload payload. Transcript includes the closing record.
type TicketClosedPayload struct {
	OwnerName  string                   `json:"owner_name"`
	Transcript []domain.TranscriptEntry `json:"transcript"`
}
