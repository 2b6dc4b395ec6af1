package bot

import (
	"context"
	"fmt"
	"time"

	"guildwarden/internal/tickets"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// platform adapts the discordgo session to the collaborator interfaces the
// moderation pipeline and the ticket registry depend on.
type platform struct {
	session  *discordgo.Session
	category string
	logger   *zap.Logger
}

func (p *platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	_ = ctx
	return p.session.ChannelMessageDelete(channelID, messageID)
}

func (p *platform) TimeoutMember(ctx context.Context, guildID, userID string, duration time.Duration, reason string) error {
	_ = ctx
	_ = reason
	until := time.Now().Add(duration)
	return p.session.GuildMemberTimeout(guildID, userID, &until)
}

func (p *platform) AnnounceCurseDeletion(ctx context.Context, channelID, userID string) {
	_ = ctx
	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ Inappropriate Language Detected",
		Description: fmt.Sprintf("<@%s>, please keep the chat clean and respectful.", userID),
		Color:       colorOrange,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Message deleted"},
	}
	p.sendTransientEmbed(channelID, embed, 5*time.Second)
}

func (p *platform) AnnounceSpamTimeout(ctx context.Context, channelID, userID string, duration time.Duration) {
	_ = ctx
	embed := &discordgo.MessageEmbed{
		Title:       "🚫 Anti-Spam Protection",
		Description: fmt.Sprintf("<@%s> has been timed out for spamming.", userID),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Duration", Value: fmt.Sprintf("%d minutes", int(duration.Minutes()))},
		},
	}
	p.sendTransientEmbed(channelID, embed, 10*time.Second)
}

func (p *platform) DirectTimeoutNotice(ctx context.Context, guildID, userID string, duration time.Duration, reason string) error {
	_ = ctx
	channel, err := p.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🚫 Timeout Notice",
		Description: fmt.Sprintf("You have been timed out for %s.", reason),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Duration", Value: fmt.Sprintf("%d minutes", int(duration.Minutes()))},
		},
	}
	_, err = p.session.ChannelMessageSendEmbed(channel.ID, embed)
	return err
}

func (p *platform) sendTransientEmbed(channelID string, embed *discordgo.MessageEmbed, after time.Duration) {
	msg, err := p.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		p.logger.Warn("notice send failed", zap.String("channel_id", channelID), zap.Error(err))
		return
	}
	time.AfterFunc(after, func() {
		_ = p.session.ChannelMessageDelete(channelID, msg.ID)
	})
}

// CreateTicketChannel provisions a private text channel under the ticket
// category with overwrites granting the owner read/write, administrators
// and support roles read/write/manage, and everyone else no access.
func (p *platform) CreateTicketChannel(ctx context.Context, guildID, ownerID string, number int, supportRoles []string) (string, error) {
	_ = ctx

	categoryID, err := p.ensureCategory(guildID)
	if err != nil {
		return "", fmt.Errorf("ensure ticket category: %w", err)
	}

	memberAllow := int64(discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionAttachFiles |
		discordgo.PermissionEmbedLinks)
	staffAllow := int64(discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionManageMessages)

	overwrites := []*discordgo.PermissionOverwrite{
		// The @everyone role shares the guild's id.
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: int64(discordgo.PermissionViewChannel)},
		{ID: ownerID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberAllow},
	}
	if p.session.State != nil && p.session.State.User != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    p.session.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: int64(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionManageChannels),
		})
	}

	roles, err := p.session.GuildRoles(guildID)
	if err == nil {
		for _, role := range roles {
			if role.Permissions&discordgo.PermissionAdministrator != 0 {
				overwrites = append(overwrites, &discordgo.PermissionOverwrite{
					ID:    role.ID,
					Type:  discordgo.PermissionOverwriteTypeRole,
					Allow: staffAllow,
				})
			}
		}
	}
	for _, roleID := range supportRoles {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: staffAllow,
		})
	}

	channel, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 tickets.ChannelName(number),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Ticket created by <@%s>", ownerID),
		ParentID:             categoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func (p *platform) DeleteTicketChannel(channelID, reason string) {
	if _, err := p.session.ChannelDelete(channelID); err != nil {
		p.logger.Warn("ticket channel delete failed",
			zap.String("channel_id", channelID),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	p.logger.Info("ticket channel deleted", zap.String("channel_id", channelID), zap.String("reason", reason))
}

func (p *platform) ChannelHasMember(channelID, userID string) bool {
	channel, err := p.session.State.Channel(channelID)
	if err != nil {
		channel, err = p.session.Channel(channelID)
		if err != nil {
			return false
		}
	}
	for _, overwrite := range channel.PermissionOverwrites {
		if overwrite.Type == discordgo.PermissionOverwriteTypeMember &&
			overwrite.ID == userID &&
			overwrite.Allow&int64(discordgo.PermissionViewChannel) != 0 {
			return true
		}
	}
	return false
}

func (p *platform) GuildHasMember(guildID, userID string) bool {
	if member, err := p.session.State.Member(guildID, userID); err == nil && member != nil {
		return true
	}
	_, err := p.session.GuildMember(guildID, userID)
	return err == nil
}

func (p *platform) ensureCategory(guildID string) (string, error) {
	channels, err := p.session.GuildChannels(guildID)
	if err != nil {
		return "", err
	}
	for _, channel := range channels {
		if channel.Type == discordgo.ChannelTypeGuildCategory && channel.Name == p.category {
			return channel.ID, nil
		}
	}
	category, err := p.session.GuildChannelCreate(guildID, p.category, discordgo.ChannelTypeGuildCategory)
	if err != nil {
		return "", err
	}
	return category.ID, nil
}
