package bot

import "github.com/bwmarrin/discordgo"

func (b *Bot) registerCommands() error {
	adminOnly := int64(discordgo.PermissionAdministrator)
	kickMembers := int64(discordgo.PermissionKickMembers)
	banMembers := int64(discordgo.PermissionBanMembers)
	moderateMembers := int64(discordgo.PermissionModerateMembers)
	muteMembers := int64(discordgo.PermissionVoiceMuteMembers)

	memberOption := func(description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: description,
			Required:    true,
		}
	}
	reasonOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason for the action",
		Required:    false,
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "info",
			Description: "Display bot information",
		},
		{
			Name:                     "kick",
			Description:              "Kick a member from the server",
			DefaultMemberPermissions: &kickMembers,
			Options:                  []*discordgo.ApplicationCommandOption{memberOption("Member to kick"), reasonOption},
		},
		{
			Name:                     "ban",
			Description:              "Ban a member from the server",
			DefaultMemberPermissions: &banMembers,
			Options:                  []*discordgo.ApplicationCommandOption{memberOption("Member to ban"), reasonOption},
		},
		{
			Name:                     "unban",
			Description:              "Unban a user by id",
			DefaultMemberPermissions: &banMembers,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "user_id",
					Description: "Numeric id of the banned user",
					Required:    true,
				},
			},
		},
		{
			Name:                     "timeout",
			Description:              "Timeout a member temporarily",
			DefaultMemberPermissions: &moderateMembers,
			Options: []*discordgo.ApplicationCommandOption{
				memberOption("Member to timeout"),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Duration in minutes",
					Required:    true,
				},
				reasonOption,
			},
		},
		{
			Name:                     "untimeout",
			Description:              "Remove a member's timeout",
			DefaultMemberPermissions: &moderateMembers,
			Options:                  []*discordgo.ApplicationCommandOption{memberOption("Member to release")},
		},
		{
			Name:                     "mute",
			Description:              "Server-mute a member in voice",
			DefaultMemberPermissions: &muteMembers,
			Options:                  []*discordgo.ApplicationCommandOption{memberOption("Member to mute")},
		},
		{
			Name:                     "unmute",
			Description:              "Remove a member's server mute",
			DefaultMemberPermissions: &muteMembers,
			Options:                  []*discordgo.ApplicationCommandOption{memberOption("Member to unmute")},
		},
		{
			Name:                     "warn",
			Description:              "Issue a warning to a member",
			DefaultMemberPermissions: &kickMembers,
			Options: []*discordgo.ApplicationCommandOption{
				memberOption("Member to warn"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the warning",
					Required:    true,
				},
			},
		},
		{
			Name:                     "checkwarnings",
			Description:              "View a member's warnings",
			DefaultMemberPermissions: &kickMembers,
			Options:                  []*discordgo.ApplicationCommandOption{memberOption("Member to look up")},
		},
		{
			Name:                     "clearwarnings",
			Description:              "Clear all warnings for a member",
			DefaultMemberPermissions: &adminOnly,
			Options:                  []*discordgo.ApplicationCommandOption{memberOption("Member to clear")},
		},
		{
			Name:                     "dm",
			Description:              "Send a direct message to a member",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				memberOption("Member to message"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Message to send",
					Required:    true,
				},
			},
		},
		{
			Name:                     "dmeveryone",
			Description:              "Send a direct message to all members",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Message to broadcast",
					Required:    true,
				},
			},
		},
		{
			Name:                     "feature",
			Description:              "Enable or disable a bot feature",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "enable or disable",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Enable", Value: "enable"},
						{Name: "Disable", Value: "disable"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Feature to toggle",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Info Command", Value: "info"},
						{Name: "Kick Command", Value: "kick"},
						{Name: "Ban Command", Value: "ban"},
						{Name: "Timeout Command", Value: "timeout"},
						{Name: "Cursing Filter", Value: "cursing"},
						{Name: "Spam Protection", Value: "spamming"},
						{Name: "DM Command", Value: "dm"},
						{Name: "Warn Command", Value: "warn"},
					},
				},
			},
		},
		{
			Name:                     "config",
			Description:              "Set a moderation timeout duration",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "Which duration to set",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Spam timeout", Value: "spam_timeout"},
						{Name: "Curse timeout", Value: "curse_timeout"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "minutes",
					Description: "Duration in minutes (1-10080)",
					Required:    true,
				},
			},
		},
		{
			Name:                     "ticketpanel",
			Description:              "Post the support ticket panel",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "closeticket",
			Description:              "Close the current ticket channel",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "addsupportrole",
			Description:              "Allow a role to manage tickets",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role to add",
					Required:    true,
				},
			},
		},
		{
			Name:                     "removesupportrole",
			Description:              "Remove a ticket-managing role",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role to remove",
					Required:    true,
				},
			},
		},
		{
			Name:                     "listsupportroles",
			Description:              "List the ticket-managing roles",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "setverifyrole",
			Description:              "Set the verification role",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role granted on verification",
					Required:    true,
				},
			},
		},
		{
			Name:        "verify",
			Description: "Get the verification role",
		},
		{
			Name:                     "mverify",
			Description:              "Manually verify a member",
			DefaultMemberPermissions: &adminOnly,
			Options:                  []*discordgo.ApplicationCommandOption{memberOption("Member to verify")},
		},
		{
			Name:        "ask",
			Description: "Ask the AI a question",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "Your question",
					Required:    true,
				},
			},
		},
		{
			Name:                     "generate",
			Description:              "Generate creative text with AI",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "prompt",
					Description: "Generation prompt",
					Required:    true,
				},
			},
		},
		{
			Name:                     "prompt",
			Description:              "Get a structured AI response",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "Prompt text",
					Required:    true,
				},
			},
		},
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", commands)
	return err
}
