package worker

import (
	"github.com/spec-kit/ticket-bot/internal/service"
)

// Subscriber is a service that listens to ticket events.
type Subscriber interface {
	RegisterHandlers()
}

// StartSubscribers registers the ticket event listeners, skipping nil ones.
func StartSubscribers(subscribers ...Subscriber) {
	for _, sub := range subscribers {
		if sub == nil {
			continue
		}
		sub.RegisterHandlers()
	}
}

// StartTicketSubscribers wires the log channel writer and, when configured,
// the transcript archive.
func StartTicketSubscribers(logs *service.TicketLogService, archive *service.ArchiveService) {
	subs := []Subscriber{}
	if logs != nil {
		subs = append(subs, logs)
	}
	if archive != nil {
		subs = append(subs, archive)
	}
	StartSubscribers(subs...)
}
