package bot

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	colorGreen  = 0x57F287
	colorRed    = 0xED4245
	colorOrange = 0xE67E22
	colorYellow = 0xFEE75C
	colorBlue   = 0x3498DB
	colorPurple = 0x9B59B6

	maxEmbedLength = 4096
)

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) respondText(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) deferResponse(session *discordgo.Session, interaction *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func (b *Bot) followUpText(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	params := &discordgo.WebhookParams{Content: content}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	if _, err := session.FollowupMessageCreate(interaction.Interaction, true, params); err != nil {
		b.logger.Warn("interaction follow-up failed", zap.Error(err))
	}
}

func (b *Bot) followUpEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) *discordgo.Message {
	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	msg, err := session.FollowupMessageCreate(interaction.Interaction, true, params)
	if err != nil {
		b.logger.Warn("interaction follow-up failed", zap.Error(err))
		return nil
	}
	return msg
}

func simpleEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: color}
}

func errorEmbed(description string) *discordgo.MessageEmbed {
	return simpleEmbed("❌ Error", description, colorRed)
}
