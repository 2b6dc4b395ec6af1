package bot

import (
	"context"
	"errors"
	"fmt"

	"guildwarden/internal/tickets"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) handleTicketPanel(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	panel := &discordgo.MessageEmbed{
		Title:       "🎫 Support Tickets",
		Description: "Need help? Click the button below to open a private ticket with the support team.",
		Color:       colorBlue,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Create Ticket",
					Style:    discordgo.PrimaryButton,
					CustomID: "create_ticket",
					Emoji:    discordgo.ComponentEmoji{Name: "🎫"},
				},
			},
		},
	}

	if _, err := session.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{panel},
		Components: components,
	}); err != nil {
		b.respondEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to post the ticket panel: %v", err)), true)
		return
	}
	b.respondText(session, interaction, "✅ Ticket panel posted.", true)
}

func (b *Bot) handleCreateTicket(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if err := b.deferResponse(session, interaction, true); err != nil {
		b.logger.Warn("interaction defer failed", zap.Error(err))
		return
	}
	userID := interactionUserID(interaction)

	ticket, err := b.registry.Create(ctx, interaction.GuildID, userID)
	if err != nil {
		var cooldown *tickets.CooldownError
		var open *tickets.AlreadyOpenError
		switch {
		case errors.As(err, &cooldown):
			b.followUpText(session, interaction, fmt.Sprintf("⏳ Please wait %d seconds before creating another ticket.", int(cooldown.Remaining.Seconds())), true)
		case errors.As(err, &open):
			b.followUpText(session, interaction, fmt.Sprintf("❌ You already have an open ticket: <#%s>", open.ChannelID), true)
		default:
			b.logger.Error("ticket creation failed", zap.String("guild_id", interaction.GuildID), zap.String("user_id", userID), zap.Error(err))
			b.followUpText(session, interaction, "❌ Failed to create the ticket. Please try again later.", true)
		}
		return
	}

	controls := &discordgo.MessageEmbed{
		Title:       "🎫 Ticket Created",
		Description: fmt.Sprintf("Welcome <@%s>! Describe your issue and the support team will be with you shortly.", userID),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket", Value: fmt.Sprintf("#%04d", ticket.Number), Inline: true},
			{Name: "Status", Value: "🟢 Open", Inline: true},
		},
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Claim",
					Style:    discordgo.SuccessButton,
					CustomID: "claim_ticket",
					Emoji:    discordgo.ComponentEmoji{Name: "🙋"},
				},
				discordgo.Button{
					Label:    "Close",
					Style:    discordgo.DangerButton,
					CustomID: "close_ticket",
					Emoji:    discordgo.ComponentEmoji{Name: "🔒"},
				},
			},
		},
	}
	if _, err := session.ChannelMessageSendComplex(ticket.ChannelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("<@%s>", userID),
		Embeds:     []*discordgo.MessageEmbed{controls},
		Components: components,
	}); err != nil {
		b.logger.Warn("ticket welcome message failed", zap.String("channel_id", ticket.ChannelID), zap.Error(err))
	}

	b.followUpText(session, interaction, fmt.Sprintf("✅ Ticket created: <#%s>", ticket.ChannelID), true)
}

func (b *Bot) handleClaimTicket(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	_ = ctx
	claimantID := interactionUserID(interaction)
	actor := actorFromInteraction(interaction)

	ticket, err := b.registry.Claim(interaction.ChannelID, claimantID, actor)
	if err != nil {
		var claimed *tickets.AlreadyClaimedError
		switch {
		case errors.Is(err, tickets.ErrUnauthorized):
			b.respondText(session, interaction, "❌ Only support staff can claim tickets.", true)
		case errors.Is(err, tickets.ErrNotActive):
			b.respondText(session, interaction, "❌ This channel is not an active ticket.", true)
		case errors.As(err, &claimed):
			b.respondText(session, interaction, fmt.Sprintf("❌ This ticket is already claimed by <@%s>.", claimed.ClaimantID), true)
		default:
			b.logger.Error("ticket claim failed", zap.String("channel_id", interaction.ChannelID), zap.Error(err))
			b.respondText(session, interaction, "❌ Failed to claim the ticket.", true)
		}
		return
	}

	embed := simpleEmbed("🙋 Ticket Claimed", fmt.Sprintf("<@%s> will be handling this ticket.", ticket.ClaimantID), colorGreen)
	b.respondEmbed(session, interaction, embed, false)
	b.updateTicketStatus(session, interaction.ChannelID, fmt.Sprintf("🙋 Claimed by <@%s>", ticket.ClaimantID))
}

func (b *Bot) handleCloseTicket(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	_ = ctx
	closerID := interactionUserID(interaction)
	actor := actorFromInteraction(interaction)

	if err := b.registry.Close(interaction.ChannelID, closerID, actor); err != nil {
		switch {
		case errors.Is(err, tickets.ErrUnauthorized):
			b.respondText(session, interaction, "❌ Only support staff can close tickets.", true)
		case errors.Is(err, tickets.ErrNotActive):
			b.respondText(session, interaction, "❌ This channel is not an active ticket.", true)
		default:
			b.logger.Error("ticket close failed", zap.String("channel_id", interaction.ChannelID), zap.Error(err))
			b.respondText(session, interaction, "❌ Failed to close the ticket.", true)
		}
		return
	}

	grace := b.cfg.Tickets.CloseGraceSeconds
	embed := simpleEmbed("🔒 Closing Ticket", fmt.Sprintf("This ticket was closed by <@%s>. The channel will be deleted in %d seconds.", closerID, grace), colorRed)
	b.respondEmbed(session, interaction, embed, false)
}

// updateTicketStatus rewrites the Status field on the ticket controls
// embed. The controls message is expected near the top of the channel,
// scanning the latest messages covers short tickets well enough.
func (b *Bot) updateTicketStatus(session *discordgo.Session, channelID, status string) {
	messages, err := session.ChannelMessages(channelID, 10, "", "", "")
	if err != nil {
		b.logger.Warn("ticket history fetch failed", zap.String("channel_id", channelID), zap.Error(err))
		return
	}
	for _, msg := range messages {
		if msg.Author == nil || msg.Author.ID != session.State.User.ID || len(msg.Embeds) == 0 {
			continue
		}
		embed := msg.Embeds[0]
		if embed.Title != "🎫 Ticket Created" {
			continue
		}
		for _, field := range embed.Fields {
			if field.Name == "Status" {
				field.Value = status
			}
		}
		if _, err := session.ChannelMessageEditEmbed(channelID, msg.ID, embed); err != nil {
			b.logger.Warn("ticket status edit failed", zap.String("channel_id", channelID), zap.Error(err))
		}
		return
	}
}
