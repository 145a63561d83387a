package handlers

import (
	"context"

	"github.com/spec-kit/ticket-bot/internal/service"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

const msgGuildOnly = "Tickets can only be used inside a server."

// TicketHandler serves the Create Ticket and Close Ticket buttons.
type TicketHandler struct {
	service *service.TicketService
}

// NewTicketHandler constructs handler.
func NewTicketHandler(ticketService *service.TicketService) *TicketHandler {
	return &TicketHandler{service: ticketService}
}

// CreateTicket handles the "ticket:create" button.
func (h *TicketHandler) CreateTicket(ctx context.Context, in *Interaction) error {
	if in.GuildID == "" {
		return apperrors.NewForbidden(msgGuildOnly)
	}
	_, err := h.service.OpenTicket(ctx, service.OpenTicketInput{
		GuildID:   in.GuildID,
		Actor:     in.Actor,
		Responder: in.Responder,
	})
	return err
}

// CloseTicket handles the "ticket:close" button.
func (h *TicketHandler) CloseTicket(ctx context.Context, in *Interaction) error {
	if in.GuildID == "" {
		return apperrors.NewForbidden(msgGuildOnly)
	}
	_, err := h.service.CloseTicket(ctx, service.CloseTicketInput{
		GuildID:   in.GuildID,
		ChannelID: in.ChannelID,
		Actor:     in.Actor,
		Responder: in.Responder,
	})
	return err
}
