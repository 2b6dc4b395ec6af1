package pipeline

import (
	"context"
	"testing"
	"time"

	"guildwarden/internal/guildconfig"
	"guildwarden/internal/modules/antispam"
	"guildwarden/internal/modules/profanity"
	"guildwarden/internal/storage"

	"go.uber.org/zap"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type nopPersister struct{}

func (nopPersister) SaveGuildConfigs(map[string]storage.GuildConfigRecord) error { return nil }
func (nopPersister) SaveSupportRoles(map[string][]string) error                  { return nil }
func (nopPersister) SaveVerifyRoles(map[string]string) error                     { return nil }

type recordedTimeout struct {
	userID   string
	duration time.Duration
	reason   string
}

type fakeActor struct {
	deleted       []string
	timeouts      []recordedTimeout
	curseNotices  int
	spamNotices   int
	directNotices int
}

func (f *fakeActor) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeActor) TimeoutMember(ctx context.Context, guildID, userID string, duration time.Duration, reason string) error {
	f.timeouts = append(f.timeouts, recordedTimeout{userID: userID, duration: duration, reason: reason})
	return nil
}

func (f *fakeActor) AnnounceCurseDeletion(ctx context.Context, channelID, userID string) {
	f.curseNotices++
}

func (f *fakeActor) AnnounceSpamTimeout(ctx context.Context, channelID, userID string, duration time.Duration) {
	f.spamNotices++
}

func (f *fakeActor) DirectTimeoutNotice(ctx context.Context, guildID, userID string, duration time.Duration, reason string) error {
	f.directNotices++
	return nil
}

func newTestPipeline() (*Pipeline, *fakeActor, *guildconfig.Store) {
	configs := guildconfig.NewStore(guildconfig.Defaults{SpamTimeoutMinutes: 10, CurseTimeoutMinutes: 5}, nopPersister{})
	actor := &fakeActor{}
	pipeline := New(configs, profanity.New(), antispam.New(5, 6*time.Second), actor, zap.NewNop())
	pipeline.WithClock(fakeClock{now: time.Unix(0, 0)})
	return pipeline, actor, configs
}

func message(content string) Message {
	return Message{GuildID: "g1", ChannelID: "c1", MessageID: "m1", AuthorID: "u1", Content: content}
}

func TestCursingDeletesAndTimesOut(t *testing.T) {
	pipeline, actor, _ := newTestPipeline()

	pipeline.HandleMessage(context.Background(), message("you bastard"))

	if len(actor.deleted) != 1 || actor.deleted[0] != "m1" {
		t.Fatalf("deleted = %v", actor.deleted)
	}
	if actor.curseNotices != 1 {
		t.Fatalf("curse notices = %d", actor.curseNotices)
	}
	if len(actor.timeouts) != 1 {
		t.Fatalf("timeouts = %v", actor.timeouts)
	}
	timeout := actor.timeouts[0]
	if timeout.userID != "u1" || timeout.duration != 5*time.Minute || timeout.reason != "Using inappropriate language" {
		t.Fatalf("timeout = %+v", timeout)
	}
	if actor.directNotices != 1 {
		t.Fatalf("direct notices = %d", actor.directNotices)
	}
}

func TestCursingDisabledLeavesMessage(t *testing.T) {
	pipeline, actor, configs := newTestPipeline()
	configs.SetFeature("g1", "cursing", false)

	pipeline.HandleMessage(context.Background(), message("you bastard"))

	if len(actor.deleted) != 0 || len(actor.timeouts) != 0 {
		t.Fatalf("disabled cursing still acted: %v %v", actor.deleted, actor.timeouts)
	}
}

func TestCleanMessageIgnored(t *testing.T) {
	pipeline, actor, _ := newTestPipeline()

	pipeline.HandleMessage(context.Background(), message("hello there"))

	if len(actor.deleted) != 0 || len(actor.timeouts) != 0 {
		t.Fatalf("clean message triggered actions")
	}
}

func TestSpamBurstTimesOut(t *testing.T) {
	pipeline, actor, configs := newTestPipeline()
	configs.SetDuration("g1", guildconfig.SpamTimeout, 15)

	for i := 0; i < 5; i++ {
		pipeline.HandleMessage(context.Background(), message("hi"))
	}

	if len(actor.timeouts) != 1 {
		t.Fatalf("timeouts = %v", actor.timeouts)
	}
	timeout := actor.timeouts[0]
	if timeout.duration != 15*time.Minute || timeout.reason != "Spamming messages" {
		t.Fatalf("timeout = %+v", timeout)
	}
	if actor.spamNotices != 1 {
		t.Fatalf("spam notices = %d", actor.spamNotices)
	}
}

func TestSpamDisabledStillTracksWindow(t *testing.T) {
	pipeline, actor, configs := newTestPipeline()
	configs.SetFeature("g1", "spamming", false)

	for i := 0; i < 5; i++ {
		pipeline.HandleMessage(context.Background(), message("hi"))
	}
	if len(actor.timeouts) != 0 {
		t.Fatalf("disabled spamming still acted: %v", actor.timeouts)
	}

	// Re-enable mid-burst: the full window triggers on the next message.
	configs.SetFeature("g1", "spamming", true)
	pipeline.HandleMessage(context.Background(), message("hi"))
	if len(actor.timeouts) != 1 {
		t.Fatalf("expected violation after re-enable, got %v", actor.timeouts)
	}
}

func TestDirectMessagesSkipped(t *testing.T) {
	pipeline, actor, _ := newTestPipeline()

	pipeline.HandleMessage(context.Background(), Message{AuthorID: "u1", Content: "you bastard"})

	if len(actor.deleted) != 0 || len(actor.timeouts) != 0 {
		t.Fatalf("guildless message acted on")
	}
}
