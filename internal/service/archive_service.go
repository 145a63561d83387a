package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/repository"
)

// ArchiveService stores the transcript of every closed ticket.
type ArchiveService struct {
	dispatcher events.Dispatcher
	archives   repository.TranscriptArchiveRepository
	logger     *zap.Logger
}

// NewArchiveService creates the service.
func NewArchiveService(dispatcher events.Dispatcher, archives repository.TranscriptArchiveRepository, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{dispatcher: dispatcher, archives: archives, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *ArchiveService) RegisterHandlers() {
	if a.dispatcher == nil || a.archives == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketClosed, a.handleTicketClosed)
}

func (a *ArchiveService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	archive := &repository.TranscriptArchive{
		GuildID:     event.GuildID,
		ChannelID:   event.ChannelID,
		ChannelName: event.ChannelName,
		OwnerName:   payload.OwnerName,
		ClosedByID:  event.Actor.ID,
		ClosedBy:    event.Actor.Username,
		ClosedAt:    event.Timestamp,
		Entries:     payload.Transcript,
	}
	if err := a.archives.Create(ctx, archive); err != nil {
		return fmt.Errorf("archive transcript of %s: %w", event.ChannelName, err)
	}

	a.logger.Info("transcript archived",
		zap.String("archive_id", archive.ID),
		zap.String("channel", event.ChannelName),
		zap.Int("entries", len(archive.Entries)))
	return nil
}
