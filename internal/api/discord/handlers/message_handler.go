package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/service"
)

// MessageHandler feeds channel messages into ticket transcripts.
type MessageHandler struct {
	service *service.TicketService
	logger  *zap.Logger
}

// NewMessageHandler constructs handler.
func NewMessageHandler(ticketService *service.TicketService, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{service: ticketService, logger: logger}
}

// Collect records msg when it belongs to a ticket. Failures are logged and
// never stop command processing.
func (h *MessageHandler) Collect(ctx context.Context, msg domain.InboundMessage) bool {
	recorded, err := h.service.RecordMessage(ctx, msg)
	if err != nil {
		h.logger.Warn("transcript capture failed",
			zap.String("channel_id", msg.ChannelID),
			zap.Error(err))
		return false
	}
	return recorded
}
