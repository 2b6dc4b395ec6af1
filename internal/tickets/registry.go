// Package tickets implements the support-ticket lifecycle: Open on
// provisioning, Claimed by a support actor, removed on close with the
// channel deleted after a grace delay. Ticket numbers are per guild,
// monotonic, and never reused; a failed provisioning attempt rolls the
// counter back so the number is not consumed.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"guildwarden/internal/auth"
	"guildwarden/internal/storage"
	"guildwarden/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("not authorized to manage tickets")
	ErrNotActive    = errors.New("not an active ticket channel")
)

// CooldownError rejects a creation attempt made before the per-user
// minimum interval has elapsed.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("ticket cooldown active for another %ds", int(e.Remaining.Seconds()))
}

// AlreadyOpenError rejects a creation attempt by a user who already has an
// open ticket channel in the guild.
type AlreadyOpenError struct {
	ChannelID string
}

func (e *AlreadyOpenError) Error() string {
	return "user already has an open ticket"
}

// AlreadyClaimedError rejects a claim on a ticket whose current claimant
// is still a member of the guild.
type AlreadyClaimedError struct {
	ClaimantID string
}

func (e *AlreadyClaimedError) Error() string {
	return "ticket already claimed"
}

// ChannelName renders the zero-padded channel name for a ticket number.
func ChannelName(number int) string {
	return fmt.Sprintf("ticket-%04d", number)
}

type Status string

const (
	StatusOpen    Status = "open"
	StatusClaimed Status = "claimed"
)

type Ticket struct {
	ChannelID  string
	GuildID    string
	OwnerID    string
	Number     int
	Status     Status
	ClaimantID string
}

// Platform is the external channel-provisioning collaborator.
type Platform interface {
	CreateTicketChannel(ctx context.Context, guildID, ownerID string, number int, supportRoles []string) (string, error)
	DeleteTicketChannel(channelID, reason string)
	ChannelHasMember(channelID, userID string) bool
	GuildHasMember(guildID, userID string) bool
}

// RoleSource provides the guild's configured support roles for
// authorization checks.
type RoleSource interface {
	SupportRoles(guildID string) []string
}

type Persister interface {
	SaveTickets(storage.TicketsSnapshot) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Registry struct {
	mu             sync.RWMutex
	guildMu        *utils.KeyedMutex
	counters       map[string]int
	active         map[string][]string
	tickets        map[string]*Ticket
	cooldowns      map[string]time.Time
	pendingDeletes map[string]*time.Timer
	cooldown       time.Duration
	grace          time.Duration
	platform       Platform
	roles          RoleSource
	persist        Persister
	clock          Clock
	logger         *zap.Logger
}

func NewRegistry(cooldown, grace time.Duration, platform Platform, roles RoleSource, persist Persister, logger *zap.Logger) *Registry {
	return &Registry{
		guildMu:        utils.NewKeyedMutex(),
		counters:       make(map[string]int),
		active:         make(map[string][]string),
		tickets:        make(map[string]*Ticket),
		cooldowns:      make(map[string]time.Time),
		pendingDeletes: make(map[string]*time.Timer),
		cooldown:       cooldown,
		grace:          grace,
		platform:       platform,
		roles:          roles,
		persist:        persist,
		clock:          realClock{},
		logger:         logger,
	}
}

func (r *Registry) WithClock(clock Clock) {
	r.clock = clock
}

// Restore rebuilds the registry from a persisted snapshot. Owner and
// number bindings are not part of the snapshot shape; restored tickets
// carry their claim state and the counters continue where they left off.
func (r *Registry) Restore(snapshot storage.TicketsSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for guildID, counter := range snapshot.Counter {
		r.counters[guildID] = counter
	}
	for guildID, channels := range snapshot.Active {
		r.active[guildID] = append([]string(nil), channels...)
		for _, channelID := range channels {
			ticket := &Ticket{ChannelID: channelID, GuildID: guildID, Status: StatusOpen}
			if claimant, ok := snapshot.Claims[channelID]; ok {
				ticket.Status = StatusClaimed
				ticket.ClaimantID = claimant
			}
			r.tickets[channelID] = ticket
		}
	}
}

// Create provisions a new ticket for userID in guildID. The per-guild
// mutex is held across provisioning so counter allocation and rollback
// are race-free.
func (r *Registry) Create(ctx context.Context, guildID, userID string) (Ticket, error) {
	unlock := r.guildMu.Lock(guildID)
	defer unlock()

	now := r.clock.Now()

	r.mu.Lock()
	if last, ok := r.cooldowns[userID]; ok {
		if elapsed := now.Sub(last); elapsed < r.cooldown {
			r.mu.Unlock()
			return Ticket{}, &CooldownError{Remaining: r.cooldown - elapsed}
		}
	}
	channels := append([]string(nil), r.active[guildID]...)
	r.mu.Unlock()

	for _, channelID := range channels {
		if r.platform.ChannelHasMember(channelID, userID) {
			return Ticket{}, &AlreadyOpenError{ChannelID: channelID}
		}
	}

	r.mu.Lock()
	r.counters[guildID]++
	number := r.counters[guildID]
	r.mu.Unlock()

	channelID, err := r.platform.CreateTicketChannel(ctx, guildID, userID, number, r.roles.SupportRoles(guildID))
	if err != nil {
		// No ticket was created, so the number goes back for the next
		// attempt to reuse.
		r.mu.Lock()
		r.counters[guildID]--
		r.mu.Unlock()
		return Ticket{}, fmt.Errorf("provision ticket channel: %w", err)
	}

	ticket := Ticket{
		ChannelID: channelID,
		GuildID:   guildID,
		OwnerID:   userID,
		Number:    number,
		Status:    StatusOpen,
	}

	r.mu.Lock()
	r.active[guildID] = append(r.active[guildID], channelID)
	r.tickets[channelID] = &ticket
	r.cooldowns[userID] = now
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if err := r.persist.SaveTickets(snapshot); err != nil {
		r.logger.Error("ticket snapshot failed", zap.String("guild_id", guildID), zap.Error(err))
	}
	return ticket, nil
}

// Claim transitions an open ticket to Claimed. A claim held by a member
// who has since left the guild is treated as vacant and overwritten.
func (r *Registry) Claim(channelID, claimantID string, actor auth.ActorSnapshot) (Ticket, error) {
	guildID, ok := r.ticketGuild(channelID)
	if !ok {
		return Ticket{}, ErrNotActive
	}

	unlock := r.guildMu.Lock(guildID)
	defer unlock()

	r.mu.Lock()
	ticket, ok := r.tickets[channelID]
	if !ok {
		r.mu.Unlock()
		return Ticket{}, ErrNotActive
	}
	current := ticket.ClaimantID
	r.mu.Unlock()

	if !auth.CanManageTickets(actor, r.roles.SupportRoles(guildID)) {
		return Ticket{}, ErrUnauthorized
	}
	if current != "" && r.platform.GuildHasMember(guildID, current) {
		return Ticket{}, &AlreadyClaimedError{ClaimantID: current}
	}

	r.mu.Lock()
	ticket, ok = r.tickets[channelID]
	if !ok {
		r.mu.Unlock()
		return Ticket{}, ErrNotActive
	}
	ticket.ClaimantID = claimantID
	ticket.Status = StatusClaimed
	claimed := *ticket
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if err := r.persist.SaveTickets(snapshot); err != nil {
		r.logger.Error("ticket snapshot failed", zap.String("guild_id", guildID), zap.Error(err))
	}
	return claimed, nil
}

// Close removes the ticket from the active set, clears its claim, and
// schedules channel deletion after the grace delay. A concurrent claim or
// second close observes ErrNotActive immediately.
func (r *Registry) Close(channelID, closerID string, actor auth.ActorSnapshot) error {
	guildID, ok := r.ticketGuild(channelID)
	if !ok {
		return ErrNotActive
	}

	unlock := r.guildMu.Lock(guildID)
	defer unlock()

	r.mu.Lock()
	if _, ok := r.tickets[channelID]; !ok {
		r.mu.Unlock()
		return ErrNotActive
	}
	r.mu.Unlock()

	if !auth.CanManageTickets(actor, r.roles.SupportRoles(guildID)) {
		return ErrUnauthorized
	}

	r.mu.Lock()
	if _, ok := r.tickets[channelID]; !ok {
		r.mu.Unlock()
		return ErrNotActive
	}
	delete(r.tickets, channelID)
	channels := r.active[guildID]
	for i, existing := range channels {
		if existing == channelID {
			r.active[guildID] = append(channels[:i], channels[i+1:]...)
			break
		}
	}
	snapshot := r.snapshotLocked()

	reason := "ticket closed by " + closerID
	timer := time.AfterFunc(r.grace, func() {
		r.platform.DeleteTicketChannel(channelID, reason)
		r.mu.Lock()
		delete(r.pendingDeletes, channelID)
		r.mu.Unlock()
	})
	r.pendingDeletes[channelID] = timer
	r.mu.Unlock()

	if err := r.persist.SaveTickets(snapshot); err != nil {
		r.logger.Error("ticket snapshot failed", zap.String("guild_id", guildID), zap.Error(err))
	}
	return nil
}

// Get returns the active ticket bound to channelID, if any.
func (r *Registry) Get(channelID string) (Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[channelID]
	if !ok {
		return Ticket{}, false
	}
	return *ticket, true
}

// Shutdown cancels all pending grace-delayed deletions.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for channelID, timer := range r.pendingDeletes {
		timer.Stop()
		delete(r.pendingDeletes, channelID)
	}
}

func (r *Registry) ticketGuild(channelID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[channelID]
	if !ok {
		return "", false
	}
	return ticket.GuildID, true
}

func (r *Registry) snapshotLocked() storage.TicketsSnapshot {
	snapshot := storage.TicketsSnapshot{
		Counter: make(map[string]int, len(r.counters)),
		Active:  make(map[string][]string, len(r.active)),
		Claims:  make(map[string]string),
	}
	for guildID, counter := range r.counters {
		snapshot.Counter[guildID] = counter
	}
	for guildID, channels := range r.active {
		snapshot.Active[guildID] = append([]string(nil), channels...)
	}
	for channelID, ticket := range r.tickets {
		if ticket.ClaimantID != "" {
			snapshot.Claims[channelID] = ticket.ClaimantID
		}
	}
	return snapshot
}
