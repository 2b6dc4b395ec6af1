// Package pipeline is the per-message moderation orchestrator: it consults
// the guild's feature toggles, runs the profanity filter and the spam
// detector, and issues actions through the external Actor.
package pipeline

import (
	"context"
	"time"

	"guildwarden/internal/guildconfig"
	"guildwarden/internal/modules/antispam"
	"guildwarden/internal/modules/profanity"

	"go.uber.org/zap"
)

// Message is the slice of an inbound message event the pipeline needs.
type Message struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	Content   string
}

// Actor executes moderation actions against the platform. Announce and
// direct-notice calls are best effort: the pipeline discards their
// failures, a blocked DM never fails the primary action.
type Actor interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	TimeoutMember(ctx context.Context, guildID, userID string, duration time.Duration, reason string) error
	AnnounceCurseDeletion(ctx context.Context, channelID, userID string)
	AnnounceSpamTimeout(ctx context.Context, channelID, userID string, duration time.Duration)
	DirectTimeoutNotice(ctx context.Context, guildID, userID string, duration time.Duration, reason string) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Pipeline struct {
	config *guildconfig.Store
	filter *profanity.Filter
	spam   *antispam.Detector
	actor  Actor
	clock  Clock
	logger *zap.Logger
}

func New(config *guildconfig.Store, filter *profanity.Filter, spam *antispam.Detector, actor Actor, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		config: config,
		filter: filter,
		spam:   spam,
		actor:  actor,
		clock:  realClock{},
		logger: logger,
	}
}

func (p *Pipeline) WithClock(clock Clock) {
	p.clock = clock
}

// HandleMessage runs the filters for one inbound guild message. Both
// checks run in order; a profanity hit does not short-circuit spam
// tracking.
func (p *Pipeline) HandleMessage(ctx context.Context, msg Message) {
	if msg.GuildID == "" {
		return
	}

	if p.config.FeatureEnabled(msg.GuildID, "cursing") && p.filter.ContainsViolation(msg.Content) {
		p.handleCursing(ctx, msg)
	}

	now := p.clock.Now()
	if !p.config.FeatureEnabled(msg.GuildID, "spamming") {
		// Windows advance even while enforcement is off, so re-enabling
		// mid-burst can trigger on the next message.
		p.spam.Observe(msg.AuthorID, now)
		return
	}
	if p.spam.ObserveAndCheck(msg.AuthorID, now) {
		p.handleSpam(ctx, msg)
	}
}

func (p *Pipeline) handleCursing(ctx context.Context, msg Message) {
	duration := p.config.CurseTimeoutDuration(msg.GuildID)

	if err := p.actor.DeleteMessage(ctx, msg.ChannelID, msg.MessageID); err != nil {
		p.logger.Warn("curse message delete failed",
			zap.String("guild_id", msg.GuildID),
			zap.String("channel_id", msg.ChannelID),
			zap.Error(err))
	}
	p.actor.AnnounceCurseDeletion(ctx, msg.ChannelID, msg.AuthorID)

	if err := p.actor.TimeoutMember(ctx, msg.GuildID, msg.AuthorID, duration, "Using inappropriate language"); err != nil {
		p.logger.Warn("curse timeout failed",
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", msg.AuthorID),
			zap.Error(err))
		return
	}
	_ = p.actor.DirectTimeoutNotice(ctx, msg.GuildID, msg.AuthorID, duration, "using inappropriate language")

	p.logger.Info("curse violation handled",
		zap.String("guild_id", msg.GuildID),
		zap.String("user_id", msg.AuthorID))
}

func (p *Pipeline) handleSpam(ctx context.Context, msg Message) {
	duration := p.config.SpamTimeoutDuration(msg.GuildID)

	if err := p.actor.TimeoutMember(ctx, msg.GuildID, msg.AuthorID, duration, "Spamming messages"); err != nil {
		p.logger.Warn("spam timeout failed",
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", msg.AuthorID),
			zap.Error(err))
		return
	}
	p.actor.AnnounceSpamTimeout(ctx, msg.ChannelID, msg.AuthorID, duration)

	p.logger.Info("spam violation handled",
		zap.String("guild_id", msg.GuildID),
		zap.String("user_id", msg.AuthorID))
}
