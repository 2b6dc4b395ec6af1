package tickets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"guildwarden/internal/auth"
	"guildwarden/internal/storage"

	"go.uber.org/zap"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type fakePlatform struct {
	nextID     int
	failCreate bool
	members    map[string]map[string]bool // channelID -> userID
	guildGone  map[string]bool            // userIDs no longer in the guild
	deleted    []string
	deleteCh   chan string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		members:   make(map[string]map[string]bool),
		guildGone: make(map[string]bool),
		deleteCh:  make(chan string, 8),
	}
}

func (f *fakePlatform) CreateTicketChannel(ctx context.Context, guildID, ownerID string, number int, supportRoles []string) (string, error) {
	if f.failCreate {
		return "", errors.New("provisioning refused")
	}
	f.nextID++
	channelID := fmt.Sprintf("chan-%d", f.nextID)
	f.members[channelID] = map[string]bool{ownerID: true}
	return channelID, nil
}

func (f *fakePlatform) DeleteTicketChannel(channelID, reason string) {
	f.deleted = append(f.deleted, channelID)
	f.deleteCh <- channelID
}

func (f *fakePlatform) ChannelHasMember(channelID, userID string) bool {
	return f.members[channelID][userID]
}

func (f *fakePlatform) GuildHasMember(guildID, userID string) bool {
	return !f.guildGone[userID]
}

type fakeRoles struct{ roles []string }

func (f fakeRoles) SupportRoles(guildID string) []string { return f.roles }

type fakeTicketPersister struct {
	snapshot storage.TicketsSnapshot
	saves    int
}

func (f *fakeTicketPersister) SaveTickets(snapshot storage.TicketsSnapshot) error {
	f.snapshot = snapshot
	f.saves++
	return nil
}

func newTestRegistry(platform *fakePlatform) (*Registry, *fakeTicketPersister) {
	persist := &fakeTicketPersister{}
	registry := NewRegistry(60*time.Second, 5*time.Millisecond, platform, fakeRoles{roles: []string{"support"}}, persist, zap.NewNop())
	return registry, persist
}

func supportActor() auth.ActorSnapshot {
	return auth.ActorSnapshot{RoleIDs: []string{"support"}}
}

func TestNumbersMonotonicPerGuild(t *testing.T) {
	platform := newFakePlatform()
	registry, _ := newTestRegistry(platform)
	registry.WithClock(fakeClock{now: time.Unix(0, 0)})

	first, err := registry.Create(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Number != 1 || first.Status != StatusOpen {
		t.Fatalf("first ticket = %+v", first)
	}

	second, err := registry.Create(context.Background(), "g1", "u2")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.Number != 2 {
		t.Fatalf("second ticket number = %d", second.Number)
	}

	other, err := registry.Create(context.Background(), "g2", "u3")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if other.Number != 1 {
		t.Fatalf("other guild should start at 1, got %d", other.Number)
	}
}

func TestProvisioningFailureReleasesNumber(t *testing.T) {
	platform := newFakePlatform()
	registry, persist := newTestRegistry(platform)
	registry.WithClock(fakeClock{now: time.Unix(0, 0)})

	platform.failCreate = true
	if _, err := registry.Create(context.Background(), "g1", "u1"); err == nil {
		t.Fatalf("expected provisioning error")
	}
	if persist.saves != 0 {
		t.Fatalf("failed creation should not snapshot")
	}

	platform.failCreate = false
	ticket, err := registry.Create(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("Create after failure: %v", err)
	}
	if ticket.Number != 1 {
		t.Fatalf("number consumed by failed attempt: got %d", ticket.Number)
	}
}

func TestCooldownRemaining(t *testing.T) {
	platform := newFakePlatform()
	registry, _ := newTestRegistry(platform)
	base := time.Unix(0, 0)
	registry.WithClock(fakeClock{now: base})

	ticket, err := registry.Create(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Owner leaves the channel so only the cooldown blocks a retry.
	delete(platform.members[ticket.ChannelID], "u1")

	registry.WithClock(fakeClock{now: base.Add(30 * time.Second)})
	_, err = registry.Create(context.Background(), "g1", "u1")
	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("expected CooldownError, got %v", err)
	}
	if cooldown.Remaining != 30*time.Second {
		t.Fatalf("Remaining = %v, want 30s", cooldown.Remaining)
	}

	registry.WithClock(fakeClock{now: base.Add(60 * time.Second)})
	if _, err := registry.Create(context.Background(), "g1", "u1"); err != nil {
		t.Fatalf("Create after cooldown: %v", err)
	}
}

func TestAlreadyOpenRejected(t *testing.T) {
	platform := newFakePlatform()
	registry, _ := newTestRegistry(platform)
	base := time.Unix(0, 0)
	registry.WithClock(fakeClock{now: base})

	ticket, err := registry.Create(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	registry.WithClock(fakeClock{now: base.Add(2 * time.Minute)})
	_, err = registry.Create(context.Background(), "g1", "u1")
	var open *AlreadyOpenError
	if !errors.As(err, &open) {
		t.Fatalf("expected AlreadyOpenError, got %v", err)
	}
	if open.ChannelID != ticket.ChannelID {
		t.Fatalf("AlreadyOpenError points at %s, want %s", open.ChannelID, ticket.ChannelID)
	}
}

func TestClaimAuthorization(t *testing.T) {
	platform := newFakePlatform()
	registry, _ := newTestRegistry(platform)
	registry.WithClock(fakeClock{now: time.Unix(0, 0)})

	ticket, err := registry.Create(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := registry.Claim(ticket.ChannelID, "rando", auth.ActorSnapshot{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	claimed, err := registry.Claim(ticket.ChannelID, "staff1", supportActor())
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed.Status != StatusClaimed || claimed.ClaimantID != "staff1" {
		t.Fatalf("claimed ticket = %+v", claimed)
	}

	_, err = registry.Claim(ticket.ChannelID, "staff2", supportActor())
	var already *AlreadyClaimedError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyClaimedError, got %v", err)
	}
	if already.ClaimantID != "staff1" {
		t.Fatalf("AlreadyClaimedError claimant = %s", already.ClaimantID)
	}
}

func TestStaleClaimOverwritten(t *testing.T) {
	platform := newFakePlatform()
	registry, _ := newTestRegistry(platform)
	registry.WithClock(fakeClock{now: time.Unix(0, 0)})

	ticket, _ := registry.Create(context.Background(), "g1", "u1")
	registry.Claim(ticket.ChannelID, "staff1", supportActor())

	// The claimant left the guild, the claim is vacant.
	platform.guildGone["staff1"] = true

	claimed, err := registry.Claim(ticket.ChannelID, "staff2", supportActor())
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if claimed.ClaimantID != "staff2" {
		t.Fatalf("claimant = %s, want staff2", claimed.ClaimantID)
	}
}

func TestCloseRemovesAndDeletesAfterGrace(t *testing.T) {
	platform := newFakePlatform()
	registry, persist := newTestRegistry(platform)
	registry.WithClock(fakeClock{now: time.Unix(0, 0)})

	ticket, _ := registry.Create(context.Background(), "g1", "u1")

	if err := registry.Close(ticket.ChannelID, "staff1", auth.ActorSnapshot{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := registry.Close(ticket.ChannelID, "staff1", supportActor()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The ticket is gone immediately, before the channel deletion fires.
	if _, ok := registry.Get(ticket.ChannelID); ok {
		t.Fatalf("closed ticket still active")
	}
	if _, err := registry.Claim(ticket.ChannelID, "staff2", supportActor()); !errors.Is(err, ErrNotActive) {
		t.Fatalf("claim after close = %v, want ErrNotActive", err)
	}
	if err := registry.Close(ticket.ChannelID, "staff1", supportActor()); !errors.Is(err, ErrNotActive) {
		t.Fatalf("second close = %v, want ErrNotActive", err)
	}
	if len(persist.snapshot.Active["g1"]) != 0 {
		t.Fatalf("closed channel still in persisted active set")
	}

	select {
	case deleted := <-platform.deleteCh:
		if deleted != ticket.ChannelID {
			t.Fatalf("deleted %s, want %s", deleted, ticket.ChannelID)
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not deleted after grace delay")
	}
}

func TestShutdownCancelsPendingDeletes(t *testing.T) {
	platform := newFakePlatform()
	persist := &fakeTicketPersister{}
	registry := NewRegistry(60*time.Second, 50*time.Millisecond, platform, fakeRoles{roles: []string{"support"}}, persist, zap.NewNop())
	registry.WithClock(fakeClock{now: time.Unix(0, 0)})

	ticket, _ := registry.Create(context.Background(), "g1", "u1")
	if err := registry.Close(ticket.ChannelID, "staff1", supportActor()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	registry.Shutdown()

	select {
	case <-platform.deleteCh:
		t.Fatalf("deletion fired after shutdown")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestRestoreCarriesCountersAndClaims(t *testing.T) {
	platform := newFakePlatform()
	registry, persist := newTestRegistry(platform)
	registry.WithClock(fakeClock{now: time.Unix(0, 0)})

	ticket, _ := registry.Create(context.Background(), "g1", "u1")
	registry.Claim(ticket.ChannelID, "staff1", supportActor())

	restored, _ := newTestRegistry(platform)
	restored.WithClock(fakeClock{now: time.Unix(0, 0)})
	restored.Restore(persist.snapshot)

	got, ok := restored.Get(ticket.ChannelID)
	if !ok {
		t.Fatalf("restored registry lost the ticket")
	}
	if got.Status != StatusClaimed || got.ClaimantID != "staff1" {
		t.Fatalf("restored ticket = %+v", got)
	}

	next, err := restored.Create(context.Background(), "g1", "u2")
	if err != nil {
		t.Fatalf("Create on restored registry: %v", err)
	}
	if next.Number != 2 {
		t.Fatalf("restored counter produced %d, want 2", next.Number)
	}
}

func TestChannelName(t *testing.T) {
	if got := ChannelName(7); got != "ticket-0007" {
		t.Fatalf("ChannelName(7) = %s", got)
	}
	if got := ChannelName(12345); got != "ticket-12345" {
		t.Fatalf("ChannelName(12345) = %s", got)
	}
}
