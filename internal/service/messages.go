package service

import (
	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
)

// Custom ids of the interactive controls. They are stable so buttons posted
// before a restart keep working.
const (
	CustomIDCreateTicket = "ticket:create"
	CustomIDCloseTicket  = "ticket:close"
)

// Embed colors.
const (
	ColorBlue   = 0x3498DB
	ColorGold   = 0xF1C40F
	ColorOrange = 0xE67E22
	ColorGreen  = 0x2ECC71
)

// WelcomeMessage is posted into a fresh ticket channel.
func WelcomeMessage(actor domain.Actor, staffRoleID string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "🎫 Ticket Created",
			Description: actor.Mention() + ", " + platform.RoleMention(staffRoleID) + " will be with you shortly.\n\n" +
				"When you're done, click the **Close Ticket** button below to close this ticket.",
			Color: ColorBlue,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{CloseTicketButton()}},
		},
	}
}

// CloseTicketButton is the control that triggers the closing flow.
func CloseTicketButton() discordgo.Button {
	return discordgo.Button{
		Label:    "🔒 Close Ticket",
		Style:    discordgo.DangerButton,
		CustomID: CustomIDCloseTicket,
	}
}

// CreateTicketButton is the control that triggers the creation flow.
func CreateTicketButton() discordgo.Button {
	return discordgo.Button{
		Label:    "🎫 Create Ticket",
		Style:    discordgo.SuccessButton,
		CustomID: CustomIDCreateTicket,
	}
}
