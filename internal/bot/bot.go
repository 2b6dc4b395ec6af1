package bot

import (
	"context"
	"time"

	"guildwarden/internal/ai"
	"guildwarden/internal/auth"
	"guildwarden/internal/config"
	"guildwarden/internal/guildconfig"
	"guildwarden/internal/modules/antispam"
	"guildwarden/internal/modules/profanity"
	"guildwarden/internal/pipeline"
	"guildwarden/internal/prompts"
	"guildwarden/internal/storage"
	"guildwarden/internal/tickets"
	"guildwarden/internal/warnings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	session   *discordgo.Session
	configs   *guildconfig.Store
	warnings  *warnings.Ledger
	registry  *tickets.Registry
	pipeline  *pipeline.Pipeline
	prompts   *prompts.Store
	ai        *ai.Chain
	startTime time.Time
}

func New(cfg config.Config, logger *zap.Logger, gateway *storage.Gateway, configs *guildconfig.Store, ledger *warnings.Ledger, promptStore *prompts.Store, aiChain *ai.Chain) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	adapter := &platform{
		session:  session,
		category: cfg.Tickets.CategoryName,
		logger:   logger,
	}

	registry := tickets.NewRegistry(
		time.Duration(cfg.Tickets.CooldownSeconds)*time.Second,
		time.Duration(cfg.Tickets.CloseGraceSeconds)*time.Second,
		adapter,
		configs,
		gateway,
		logger,
	)
	registry.Restore(gateway.LoadTickets())

	detector := antispam.New(cfg.Spam.Threshold, time.Duration(cfg.Spam.WindowSeconds)*time.Second)

	b := &Bot{
		cfg:      cfg,
		logger:   logger,
		session:  session,
		configs:  configs,
		warnings: ledger,
		registry: registry,
		pipeline: pipeline.New(configs, profanity.New(), detector, adapter, logger),
		prompts:  promptStore,
		ai:       aiChain,
	}
	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}
	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	b.registry.Shutdown()
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.startTime = time.Now()
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.Int("guilds", len(event.Guilds)))
	if !b.ai.Enabled() {
		b.logger.Warn("no AI provider configured, AI commands disabled")
	}
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	_ = session
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}

	b.pipeline.HandleMessage(context.Background(), pipeline.Message{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		AuthorID:  msg.Author.ID,
		Content:   msg.Content,
	})
}

// actorFromInteraction snapshots the invoking member's authority so
// downstream checks never touch the live session.
func actorFromInteraction(interaction *discordgo.InteractionCreate) auth.ActorSnapshot {
	member := interaction.Member
	if member == nil {
		return auth.ActorSnapshot{}
	}
	return auth.ActorSnapshot{
		IsAdministrator: member.Permissions&discordgo.PermissionAdministrator != 0,
		RoleIDs:         append([]string(nil), member.Roles...),
	}
}

func interactionUserID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}
