package auth

import (
	"strings"

	"github.com/spec-kit/ticket-bot/internal/domain"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// ErrMessageNotOwner is shown to members who may not close a ticket.
const ErrMessageNotOwner = "Only the ticket owner or staff can close this ticket."

// AuthorizeTicketClose checks that channelName is a ticket channel and that
// actor may close it: staff always may, otherwise the actor's username must
// match the owner name recovered from the channel name. It returns that owner
// name.
func AuthorizeTicketClose(actor domain.Actor, channelName, staffRoleID string) (string, error) {
	owner, ok := domain.OwnerNameFromChannel(channelName)
	if !ok {
		return "", apperrors.NewNotTicketChannel(channelName)
	}
	if IsStaff(actor, staffRoleID) || strings.EqualFold(actor.Username, owner) {
		return owner, nil
	}
	return owner, apperrors.NewForbidden(ErrMessageNotOwner)
}

// IsStaff reports whether actor holds the staff role.
func IsStaff(actor domain.Actor, staffRoleID string) bool {
	return actor.HasRole(staffRoleID)
}
