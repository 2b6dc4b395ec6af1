package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"guildwarden/internal/guildconfig"
	"guildwarden/internal/prompts"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx := context.Background()

	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, session, interaction)
	case discordgo.InteractionMessageComponent:
		data := interaction.MessageComponentData()
		switch data.CustomID {
		case "create_ticket":
			b.handleCreateTicket(ctx, session, interaction)
		case "claim_ticket":
			b.handleClaimTicket(ctx, session, interaction)
		case "close_ticket":
			b.handleCloseTicket(ctx, session, interaction)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	data := interaction.ApplicationCommandData()

	if interaction.GuildID == "" && data.Name != "ask" {
		b.respondEmbed(session, interaction, errorEmbed("This command can only be used in a server."), true)
		return
	}

	options := optionMap(data.Options)
	switch data.Name {
	case "info":
		b.handleInfo(session, interaction)
	case "kick":
		b.handleKick(session, interaction, options)
	case "ban":
		b.handleBan(session, interaction, options)
	case "unban":
		b.handleUnban(session, interaction, options)
	case "timeout":
		b.handleTimeout(session, interaction, options)
	case "untimeout":
		b.handleUntimeout(session, interaction, options)
	case "mute":
		b.handleMute(session, interaction, options, true)
	case "unmute":
		b.handleMute(session, interaction, options, false)
	case "warn":
		b.handleWarn(session, interaction, options)
	case "checkwarnings":
		b.handleCheckWarnings(session, interaction, options)
	case "clearwarnings":
		b.handleClearWarnings(session, interaction, options)
	case "dm":
		b.handleDM(session, interaction, options)
	case "dmeveryone":
		b.handleDMEveryone(session, interaction, options)
	case "feature":
		b.handleFeature(session, interaction, options)
	case "config":
		b.handleConfig(session, interaction, options)
	case "ticketpanel":
		b.handleTicketPanel(session, interaction)
	case "closeticket":
		b.handleCloseTicket(ctx, session, interaction)
	case "addsupportrole":
		b.handleAddSupportRole(session, interaction, options)
	case "removesupportrole":
		b.handleRemoveSupportRole(session, interaction, options)
	case "listsupportroles":
		b.handleListSupportRoles(session, interaction)
	case "setverifyrole":
		b.handleSetVerifyRole(session, interaction, options)
	case "verify":
		b.handleVerify(session, interaction)
	case "mverify":
		b.handleManualVerify(session, interaction, options)
	case "ask":
		b.handleAI(ctx, session, interaction, "ask", stringOption(options, "question"), 500, 0.7)
	case "generate":
		b.handleAI(ctx, session, interaction, "generate", stringOption(options, "prompt"), 800, 0.9)
	case "prompt":
		b.handleAI(ctx, session, interaction, "prompt", stringOption(options, "text"), 600, 0.8)
	}
}

func (b *Bot) handleInfo(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID != "" && !b.configs.FeatureEnabled(interaction.GuildID, "info") {
		b.respondText(session, interaction, "❌ This command is currently disabled.", true)
		return
	}

	uptime := time.Since(b.startTime).Round(time.Second)
	aiStatus := "❌ Disabled"
	if b.ai.Enabled() {
		aiStatus = "✅ Enabled"
	}
	embed := &discordgo.MessageEmbed{
		Title: "🤖 Bot Information",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bot Name", Value: session.State.User.Username, Inline: true},
			{Name: "Uptime", Value: uptime.String(), Inline: true},
			{Name: "Servers", Value: strconv.Itoa(len(session.State.Guilds)), Inline: true},
			{Name: "AI Features", Value: aiStatus, Inline: true},
		},
	}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleKick(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	if !b.configs.FeatureEnabled(interaction.GuildID, "kick") {
		b.respondText(session, interaction, "❌ This command is currently disabled.", true)
		return
	}
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}
	reason := stringOptionDefault(options, "reason", "No reason provided")

	if err := session.GuildMemberDeleteWithReason(interaction.GuildID, target.ID, reason); err != nil {
		b.respondEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to kick member: %v", err)), true)
		return
	}
	embed := simpleEmbed("👢 Member Kicked", fmt.Sprintf("<@%s> has been kicked from the server.", target.ID), colorOrange)
	embed.Fields = []*discordgo.MessageEmbedField{{Name: "Reason", Value: reason}}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleBan(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	if !b.configs.FeatureEnabled(interaction.GuildID, "ban") {
		b.respondText(session, interaction, "❌ This command is currently disabled.", true)
		return
	}
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}
	reason := stringOptionDefault(options, "reason", "No reason provided")

	if err := session.GuildBanCreateWithReason(interaction.GuildID, target.ID, reason, 0); err != nil {
		b.respondEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to ban member: %v", err)), true)
		return
	}
	embed := simpleEmbed("🔨 Member Banned", fmt.Sprintf("<@%s> has been banned from the server.", target.ID), colorRed)
	embed.Fields = []*discordgo.MessageEmbedField{{Name: "Reason", Value: reason}}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleUnban(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	userID := stringOption(options, "user_id")
	if _, err := strconv.ParseUint(userID, 10, 64); err != nil {
		b.respondText(session, interaction, "❌ Invalid user ID. Please provide a valid numeric user ID.", true)
		return
	}

	if err := session.GuildBanDelete(interaction.GuildID, userID); err != nil {
		b.respondEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to unban user: %v", err)), true)
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("✅ User Unbanned", fmt.Sprintf("<@%s> has been unbanned from the server.", userID), colorGreen), false)
}

func (b *Bot) handleTimeout(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	if !b.configs.FeatureEnabled(interaction.GuildID, "timeout") {
		b.respondText(session, interaction, "❌ This command is currently disabled.", true)
		return
	}
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}
	minutes := intOption(options, "duration")
	reason := stringOptionDefault(options, "reason", "No reason provided")

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := session.GuildMemberTimeout(interaction.GuildID, target.ID, &until); err != nil {
		b.respondEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to timeout member: %v", err)), true)
		return
	}
	embed := simpleEmbed("⏱️ Member Timed Out", fmt.Sprintf("<@%s> has been timed out.", target.ID), colorOrange)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Duration", Value: fmt.Sprintf("%d minutes", minutes)},
		{Name: "Reason", Value: reason},
	}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleUntimeout(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}
	if err := session.GuildMemberTimeout(interaction.GuildID, target.ID, nil); err != nil {
		b.respondEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to remove timeout: %v", err)), true)
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("✅ Timeout Removed", fmt.Sprintf("<@%s>'s timeout has been removed.", target.ID), colorGreen), false)
}

func (b *Bot) handleMute(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions, mute bool) {
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}
	if err := session.GuildMemberMute(interaction.GuildID, target.ID, mute); err != nil {
		b.respondEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to update mute: %v", err)), true)
		return
	}
	if mute {
		b.respondEmbed(session, interaction, simpleEmbed("🔇 Member Muted", fmt.Sprintf("<@%s> has been server-muted.", target.ID), colorOrange), false)
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("🔊 Member Unmuted", fmt.Sprintf("<@%s> has been unmuted.", target.ID), colorGreen), false)
}

func (b *Bot) handleWarn(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	if !b.configs.FeatureEnabled(interaction.GuildID, "warn") {
		b.respondText(session, interaction, "❌ This command is currently disabled.", true)
		return
	}
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}
	reason := stringOption(options, "reason")

	count, err := b.warnings.Add(target.ID, reason, interactionUserID(interaction), time.Now())
	if err != nil {
		b.logger.Error("warning snapshot failed", zap.String("user_id", target.ID), zap.Error(err))
	}

	embed := simpleEmbed("⚠️ Member Warned", fmt.Sprintf("<@%s> has been warned.", target.ID), colorYellow)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Reason", Value: reason},
		{Name: "Total Warnings", Value: strconv.Itoa(count)},
	}
	b.respondEmbed(session, interaction, embed, false)

	// Best-effort DM, a closed inbox never fails the warning itself.
	if channel, err := session.UserChannelCreate(target.ID); err == nil {
		dm := simpleEmbed("⚠️ Warning", "You have been warned.", colorYellow)
		dm.Fields = embed.Fields
		_, _ = session.ChannelMessageSendEmbed(channel.ID, dm)
	}
}

func (b *Bot) handleCheckWarnings(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}

	list := b.warnings.List(target.ID)
	if len(list) == 0 {
		b.respondText(session, interaction, fmt.Sprintf("<@%s> has no warnings.", target.ID), true)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⚠️ Warnings for %s", target.Username),
		Color: colorYellow,
	}
	for i, warning := range list {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Warning #%d", i+1),
			Value: fmt.Sprintf("**Reason:** %s\n**By:** <@%s>\n**Date:** %s", warning.Reason, warning.ModeratorID, warning.IssuedAt.Format("2006-01-02 15:04:05")),
		})
	}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleClearWarnings(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}

	previous, err := b.warnings.Clear(target.ID)
	if err != nil {
		b.logger.Error("warning snapshot failed", zap.String("user_id", target.ID), zap.Error(err))
	}
	if previous == 0 {
		b.respondText(session, interaction, fmt.Sprintf("<@%s> has no warnings to clear.", target.ID), true)
		return
	}
	b.respondText(session, interaction, fmt.Sprintf("✅ All warnings cleared for <@%s>.", target.ID), false)
}

func (b *Bot) handleDM(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	if !b.configs.FeatureEnabled(interaction.GuildID, "dm") {
		b.respondText(session, interaction, "❌ This command is currently disabled.", true)
		return
	}
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}
	message := stringOption(options, "message")

	channel, err := session.UserChannelCreate(target.ID)
	if err == nil {
		embed := simpleEmbed("📩 Message", message, colorBlue)
		_, err = session.ChannelMessageSendEmbed(channel.ID, embed)
	}
	if err != nil {
		b.respondText(session, interaction, fmt.Sprintf("❌ Cannot send DM to <@%s>. They may have DMs disabled.", target.ID), true)
		return
	}
	b.respondText(session, interaction, fmt.Sprintf("✅ DM sent to <@%s>.", target.ID), true)
}

func (b *Bot) handleDMEveryone(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	message := stringOption(options, "message")
	if err := b.deferResponse(session, interaction, true); err != nil {
		b.logger.Warn("interaction defer failed", zap.Error(err))
		return
	}

	guildID := interaction.GuildID
	delay := time.Duration(b.cfg.DM.BroadcastDelayMillis) * time.Millisecond

	go func() {
		embed := simpleEmbed("📢 Announcement", message, colorPurple)
		sent, failed := 0, 0

		after := ""
		for {
			members, err := session.GuildMembers(guildID, after, 1000)
			if err != nil || len(members) == 0 {
				break
			}
			for _, member := range members {
				after = member.User.ID
				if member.User.Bot {
					continue
				}
				channel, err := session.UserChannelCreate(member.User.ID)
				if err == nil {
					_, err = session.ChannelMessageSendEmbed(channel.ID, embed)
				}
				if err != nil {
					failed++
				} else {
					sent++
				}
				time.Sleep(delay)
			}
			if len(members) < 1000 {
				break
			}
		}

		result := simpleEmbed("✅ DM Broadcast Complete", fmt.Sprintf("**Sent:** %d\n**Failed:** %d", sent, failed), colorGreen)
		if _, err := session.InteractionResponseEdit(interaction.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{result},
		}); err != nil {
			b.logger.Warn("broadcast summary edit failed", zap.Error(err))
		}
	}()
}

func (b *Bot) handleFeature(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	action := stringOption(options, "action")
	name := stringOption(options, "name")
	enabled := action == "enable"

	if err := b.configs.SetFeature(interaction.GuildID, name, enabled); err != nil {
		if errors.Is(err, guildconfig.ErrUnknownFeature) {
			b.respondText(session, interaction, fmt.Sprintf("❌ Invalid feature: %s", name), true)
			return
		}
		b.respondEmbed(session, interaction, errorEmbed("Failed to update feature."), true)
		b.logger.Error("feature update failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		return
	}

	if enabled {
		b.respondEmbed(session, interaction, simpleEmbed("✅ Feature Enabled", fmt.Sprintf("**%s** has been enabled.", name), colorGreen), false)
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("🔒 Feature Disabled", fmt.Sprintf("**%s** has been disabled.", name), colorRed), false)
}

func (b *Bot) handleConfig(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	kind := guildconfig.DurationKind(stringOption(options, "kind"))
	minutes := intOption(options, "minutes")

	if err := b.configs.SetDuration(interaction.GuildID, kind, minutes); err != nil {
		if errors.Is(err, guildconfig.ErrDurationOutOfRange) {
			b.respondText(session, interaction, fmt.Sprintf("❌ Minutes must be between %d and %d.", guildconfig.MinTimeoutMinutes, guildconfig.MaxTimeoutMinutes), true)
			return
		}
		b.respondEmbed(session, interaction, errorEmbed("Failed to update configuration."), true)
		b.logger.Error("duration update failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("✅ Configuration Updated", fmt.Sprintf("**%s** set to %d minutes.", kind, minutes), colorGreen), false)
}

func (b *Bot) handleAddSupportRole(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	role := roleOption(session, interaction.GuildID, options, "role")
	if role == nil {
		b.respondEmbed(session, interaction, errorEmbed("Role not found."), true)
		return
	}

	added, err := b.configs.AddSupportRole(interaction.GuildID, role.ID)
	if err != nil {
		b.logger.Error("support role snapshot failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
	}
	if !added {
		b.respondText(session, interaction, fmt.Sprintf("❌ <@&%s> is already a support role.", role.ID), true)
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("✅ Support Role Added", fmt.Sprintf("<@&%s> can now manage tickets!", role.ID), colorGreen), false)
}

func (b *Bot) handleRemoveSupportRole(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	role := roleOption(session, interaction.GuildID, options, "role")
	if role == nil {
		b.respondEmbed(session, interaction, errorEmbed("Role not found."), true)
		return
	}

	removed, err := b.configs.RemoveSupportRole(interaction.GuildID, role.ID)
	if err != nil {
		b.logger.Error("support role snapshot failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
	}
	if !removed {
		b.respondText(session, interaction, fmt.Sprintf("❌ <@&%s> is not a support role.", role.ID), true)
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("✅ Support Role Removed", fmt.Sprintf("<@&%s> can no longer manage tickets.", role.ID), colorOrange), false)
}

func (b *Bot) handleListSupportRoles(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	roles := b.configs.SupportRoles(interaction.GuildID)
	if len(roles) == 0 {
		b.respondText(session, interaction, "❌ No support roles configured.", true)
		return
	}

	value := ""
	for _, roleID := range roles {
		value += fmt.Sprintf("<@&%s>\n", roleID)
	}
	embed := simpleEmbed("🎫 Support Roles", "The following roles can manage tickets:", colorBlue)
	embed.Fields = []*discordgo.MessageEmbedField{{Name: "Roles", Value: value}}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleSetVerifyRole(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	role := roleOption(session, interaction.GuildID, options, "role")
	if role == nil {
		b.respondEmbed(session, interaction, errorEmbed("Role not found."), true)
		return
	}

	if err := b.configs.SetVerifyRole(interaction.GuildID, role.ID); err != nil {
		b.respondEmbed(session, interaction, errorEmbed("Failed to save the verification role."), true)
		b.logger.Error("verify role snapshot failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("✅ Verification Role Set", fmt.Sprintf("The verification role has been set to <@&%s>.", role.ID), colorGreen), false)
}

func (b *Bot) handleVerify(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	roleID, ok := b.configs.VerifyRole(interaction.GuildID)
	if !ok {
		b.respondText(session, interaction, "❌ The verification role is not configured. Please contact an admin.", true)
		return
	}

	userID := interactionUserID(interaction)
	if interaction.Member != nil && hasRole(interaction.Member.Roles, roleID) {
		b.respondText(session, interaction, "✅ You are already verified!", true)
		return
	}

	if err := session.GuildMemberRoleAdd(interaction.GuildID, userID, roleID); err != nil {
		b.respondEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to verify: %v", err)), true)
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("✅ Verification Successful", fmt.Sprintf("<@%s>, you have been verified and granted <@&%s>!", userID, roleID), colorGreen), false)
}

func (b *Bot) handleManualVerify(session *discordgo.Session, interaction *discordgo.InteractionCreate, options commandOptions) {
	roleID, ok := b.configs.VerifyRole(interaction.GuildID)
	if !ok {
		b.respondText(session, interaction, "❌ The verification role is not configured. Please contact an admin.", true)
		return
	}
	target := userOption(session, options, "member")
	if target == nil {
		b.respondEmbed(session, interaction, errorEmbed("Member not found."), true)
		return
	}

	if member, err := session.GuildMember(interaction.GuildID, target.ID); err == nil && hasRole(member.Roles, roleID) {
		b.respondText(session, interaction, fmt.Sprintf("❌ <@%s> is already verified!", target.ID), true)
		return
	}

	if err := session.GuildMemberRoleAdd(interaction.GuildID, target.ID, roleID); err != nil {
		b.respondEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to verify member: %v", err)), true)
		return
	}
	b.respondEmbed(session, interaction, simpleEmbed("✅ Member Verified", fmt.Sprintf("<@%s> has been manually verified and granted <@&%s>!", target.ID, roleID), colorGreen), false)

	if channel, err := session.UserChannelCreate(target.ID); err == nil {
		_, _ = session.ChannelMessageSendEmbed(channel.ID, simpleEmbed("✅ Verified!", "You have been verified by an administrator!", colorGreen))
	}
}

func (b *Bot) handleAI(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, kind, prompt string, maxTokens int, temperature float32) {
	if !b.ai.Enabled() {
		b.respondEmbed(session, interaction, simpleEmbed("❌ Configuration Error", "Neither OpenAI nor Gemini API key is configured. Please contact the bot administrator.", colorRed), true)
		return
	}
	if err := b.deferResponse(session, interaction, false); err != nil {
		b.logger.Warn("interaction defer failed", zap.Error(err))
		return
	}

	answer, provider, err := b.ai.Complete(ctx, prompt, maxTokens, temperature)
	if err != nil {
		b.followUpEmbed(session, interaction, errorEmbed(fmt.Sprintf("Failed to generate response: %v", err)), false)
		return
	}

	truncated := false
	if len(answer) > maxEmbedLength-100 {
		answer = answer[:maxEmbedLength-103] + "..."
		truncated = true
	}

	color := colorBlue
	switch kind {
	case "generate":
		color = colorPurple
	case "prompt":
		color = colorGreen
	}
	embed := &discordgo.MessageEmbed{
		Description: answer,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Prompted by %s • %s", displayName(interaction), provider)},
	}
	if truncated {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "⚠️ Note", Value: "Response was truncated due to length limit"}}
	}

	msg := b.followUpEmbed(session, interaction, embed, false)
	if msg == nil {
		return
	}
	err = b.prompts.Put(interaction.ChannelID, msg.ID, prompts.Record{
		Type:   kind,
		UserID: interactionUserID(interaction),
		Prompt: prompt,
	})
	if err != nil {
		b.logger.Error("prompt snapshot failed", zap.String("channel_id", interaction.ChannelID), zap.Error(err))
	}
}

type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	mapped := make(commandOptions, len(options))
	for _, option := range options {
		mapped[option.Name] = option
	}
	return mapped
}

func stringOption(options commandOptions, name string) string {
	if option, ok := options[name]; ok {
		return option.StringValue()
	}
	return ""
}

func stringOptionDefault(options commandOptions, name, fallback string) string {
	if value := stringOption(options, name); value != "" {
		return value
	}
	return fallback
}

func intOption(options commandOptions, name string) int {
	if option, ok := options[name]; ok {
		return int(option.IntValue())
	}
	return 0
}

func userOption(session *discordgo.Session, options commandOptions, name string) *discordgo.User {
	if option, ok := options[name]; ok {
		return option.UserValue(session)
	}
	return nil
}

func roleOption(session *discordgo.Session, guildID string, options commandOptions, name string) *discordgo.Role {
	if option, ok := options[name]; ok {
		return option.RoleValue(session, guildID)
	}
	return nil
}

func hasRole(roles []string, roleID string) bool {
	for _, held := range roles {
		if held == roleID {
			return true
		}
	}
	return false
}

func displayName(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil {
		if interaction.Member.Nick != "" {
			return interaction.Member.Nick
		}
		if interaction.Member.User != nil {
			return interaction.Member.User.Username
		}
	}
	if interaction.User != nil {
		return interaction.User.Username
	}
	return "unknown"
}
