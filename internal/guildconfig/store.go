// Package guildconfig owns per-guild feature toggles, moderation timeout
// durations, the verification-role binding, and the support-role set.
// Records are created lazily on first access and never deleted; every
// mutator snapshots its collection before returning success.
package guildconfig

import (
	"errors"
	"sync"
	"time"

	"guildwarden/internal/storage"
	"guildwarden/internal/utils"
)

var (
	ErrUnknownFeature     = errors.New("unknown feature name")
	ErrDurationOutOfRange = errors.New("duration out of range")
)

const (
	MinTimeoutMinutes = 1
	MaxTimeoutMinutes = 10080
)

type DurationKind string

const (
	SpamTimeout  DurationKind = "spam_timeout"
	CurseTimeout DurationKind = "curse_timeout"
)

// Features recognized by SetFeature. All default to enabled.
var Features = []string{"info", "kick", "ban", "timeout", "cursing", "spamming", "dm", "warn"}

type GuildConfig struct {
	Features            map[string]bool
	SpamTimeoutMinutes  int
	CurseTimeoutMinutes int
}

type Defaults struct {
	SpamTimeoutMinutes  int
	CurseTimeoutMinutes int
}

// Persister is the slice of the persistence gateway this store snapshots to.
type Persister interface {
	SaveGuildConfigs(map[string]storage.GuildConfigRecord) error
	SaveSupportRoles(map[string][]string) error
	SaveVerifyRoles(map[string]string) error
}

type Store struct {
	mu       sync.RWMutex
	guildMu  *utils.KeyedMutex
	configs  map[string]*GuildConfig
	support  map[string][]string
	verify   map[string]string
	defaults Defaults
	persist  Persister
}

func NewStore(defaults Defaults, persist Persister) *Store {
	return &Store{
		guildMu: utils.NewKeyedMutex(),
		configs: make(map[string]*GuildConfig),
		support: make(map[string][]string),
		verify:  make(map[string]string),
		defaults: Defaults{
			SpamTimeoutMinutes:  defaults.SpamTimeoutMinutes,
			CurseTimeoutMinutes: defaults.CurseTimeoutMinutes,
		},
		persist: persist,
	}
}

// Restore replaces in-memory state from the persisted collections. Called
// once at startup, before any events are dispatched.
func (s *Store) Restore(configs map[string]storage.GuildConfigRecord, support map[string][]string, verify map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for guildID, record := range configs {
		cfg := s.newDefaultConfig()
		for name, enabled := range record.Features {
			if isKnownFeature(name) {
				cfg.Features[name] = enabled
			}
		}
		if record.SpamTimeoutMinutes >= MinTimeoutMinutes && record.SpamTimeoutMinutes <= MaxTimeoutMinutes {
			cfg.SpamTimeoutMinutes = record.SpamTimeoutMinutes
		}
		if record.CurseTimeoutMinutes >= MinTimeoutMinutes && record.CurseTimeoutMinutes <= MaxTimeoutMinutes {
			cfg.CurseTimeoutMinutes = record.CurseTimeoutMinutes
		}
		s.configs[guildID] = cfg
	}
	for guildID, roles := range support {
		s.support[guildID] = append([]string(nil), roles...)
	}
	for guildID, roleID := range verify {
		s.verify[guildID] = roleID
	}
}

// GetOrCreate returns a copy of the guild's config, creating a
// default-populated record on first access. It never fails.
func (s *Store) GetOrCreate(guildID string) GuildConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyConfig(s.getOrCreateLocked(guildID))
}

func (s *Store) FeatureEnabled(guildID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	enabled, ok := s.getOrCreateLocked(guildID).Features[name]
	return ok && enabled
}

func (s *Store) SetFeature(guildID, name string, enabled bool) error {
	if !isKnownFeature(name) {
		return ErrUnknownFeature
	}

	unlock := s.guildMu.Lock(guildID)
	defer unlock()

	s.mu.Lock()
	s.getOrCreateLocked(guildID).Features[name] = enabled
	snapshot := s.snapshotConfigsLocked()
	s.mu.Unlock()

	return s.persist.SaveGuildConfigs(snapshot)
}

func (s *Store) SetDuration(guildID string, kind DurationKind, minutes int) error {
	if minutes < MinTimeoutMinutes || minutes > MaxTimeoutMinutes {
		return ErrDurationOutOfRange
	}

	unlock := s.guildMu.Lock(guildID)
	defer unlock()

	s.mu.Lock()
	cfg := s.getOrCreateLocked(guildID)
	switch kind {
	case SpamTimeout:
		cfg.SpamTimeoutMinutes = minutes
	case CurseTimeout:
		cfg.CurseTimeoutMinutes = minutes
	default:
		s.mu.Unlock()
		return ErrDurationOutOfRange
	}
	snapshot := s.snapshotConfigsLocked()
	s.mu.Unlock()

	return s.persist.SaveGuildConfigs(snapshot)
}

func (s *Store) SpamTimeoutDuration(guildID string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.getOrCreateLocked(guildID).SpamTimeoutMinutes) * time.Minute
}

func (s *Store) CurseTimeoutDuration(guildID string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.getOrCreateLocked(guildID).CurseTimeoutMinutes) * time.Minute
}

// AddSupportRole binds roleID as a ticket-managing role. The second return
// reports whether the role was newly added; adding twice is idempotent.
func (s *Store) AddSupportRole(guildID, roleID string) (bool, error) {
	unlock := s.guildMu.Lock(guildID)
	defer unlock()

	s.mu.Lock()
	for _, existing := range s.support[guildID] {
		if existing == roleID {
			s.mu.Unlock()
			return false, nil
		}
	}
	s.support[guildID] = append(s.support[guildID], roleID)
	snapshot := s.snapshotSupportLocked()
	s.mu.Unlock()

	return true, s.persist.SaveSupportRoles(snapshot)
}

func (s *Store) RemoveSupportRole(guildID, roleID string) (bool, error) {
	unlock := s.guildMu.Lock(guildID)
	defer unlock()

	s.mu.Lock()
	roles := s.support[guildID]
	idx := -1
	for i, existing := range roles {
		if existing == roleID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.support[guildID] = append(roles[:idx], roles[idx+1:]...)
	snapshot := s.snapshotSupportLocked()
	s.mu.Unlock()

	return true, s.persist.SaveSupportRoles(snapshot)
}

func (s *Store) SupportRoles(guildID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.support[guildID]...)
}

func (s *Store) SetVerifyRole(guildID, roleID string) error {
	unlock := s.guildMu.Lock(guildID)
	defer unlock()

	s.mu.Lock()
	s.verify[guildID] = roleID
	snapshot := s.snapshotVerifyLocked()
	s.mu.Unlock()

	return s.persist.SaveVerifyRoles(snapshot)
}

func (s *Store) VerifyRole(guildID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roleID, ok := s.verify[guildID]
	return roleID, ok
}

func (s *Store) getOrCreateLocked(guildID string) *GuildConfig {
	cfg := s.configs[guildID]
	if cfg == nil {
		cfg = s.newDefaultConfig()
		s.configs[guildID] = cfg
	}
	return cfg
}

func (s *Store) newDefaultConfig() *GuildConfig {
	features := make(map[string]bool, len(Features))
	for _, name := range Features {
		features[name] = true
	}
	return &GuildConfig{
		Features:            features,
		SpamTimeoutMinutes:  s.defaults.SpamTimeoutMinutes,
		CurseTimeoutMinutes: s.defaults.CurseTimeoutMinutes,
	}
}

func (s *Store) snapshotConfigsLocked() map[string]storage.GuildConfigRecord {
	snapshot := make(map[string]storage.GuildConfigRecord, len(s.configs))
	for guildID, cfg := range s.configs {
		features := make(map[string]bool, len(cfg.Features))
		for name, enabled := range cfg.Features {
			features[name] = enabled
		}
		snapshot[guildID] = storage.GuildConfigRecord{
			Features:            features,
			SpamTimeoutMinutes:  cfg.SpamTimeoutMinutes,
			CurseTimeoutMinutes: cfg.CurseTimeoutMinutes,
		}
	}
	return snapshot
}

func (s *Store) snapshotSupportLocked() map[string][]string {
	snapshot := make(map[string][]string, len(s.support))
	for guildID, roles := range s.support {
		snapshot[guildID] = append([]string(nil), roles...)
	}
	return snapshot
}

func (s *Store) snapshotVerifyLocked() map[string]string {
	snapshot := make(map[string]string, len(s.verify))
	for guildID, roleID := range s.verify {
		snapshot[guildID] = roleID
	}
	return snapshot
}

func copyConfig(cfg *GuildConfig) GuildConfig {
	features := make(map[string]bool, len(cfg.Features))
	for name, enabled := range cfg.Features {
		features[name] = enabled
	}
	return GuildConfig{
		Features:            features,
		SpamTimeoutMinutes:  cfg.SpamTimeoutMinutes,
		CurseTimeoutMinutes: cfg.CurseTimeoutMinutes,
	}
}

func isKnownFeature(name string) bool {
	for _, feature := range Features {
		if feature == name {
			return true
		}
	}
	return false
}
