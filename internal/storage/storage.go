// Package storage persists each logical collection to its own flat JSON
// file so that a corrupt or missing file for one collection never blocks
// loading the others. A missing file is the normal first-run path; a
// malformed file is logged and replaced by defaults on the next snapshot.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	guildConfigFile  = "guild-config.json"
	ticketsFile      = "tickets.json"
	supportRolesFile = "support-roles.json"
	verifyRolesFile  = "verify-roles.json"
	warningsFile     = "warnings.json"
	promptsFile      = "commands-data.json"
)

// GuildConfigRecord is the persisted shape of one guild's configuration.
// Guild identifiers are serialized as strings for map-key compatibility.
type GuildConfigRecord struct {
	Features            map[string]bool `json:"features"`
	SpamTimeoutMinutes  int             `json:"spamTimeoutMinutes"`
	CurseTimeoutMinutes int             `json:"curseTimeoutMinutes"`
}

// TicketsSnapshot is the persisted shape of the ticket registry: per-guild
// counters, per-guild active channel sets, and channel-to-claimant bindings.
type TicketsSnapshot struct {
	Counter map[string]int      `json:"counter"`
	Active  map[string][]string `json:"active"`
	Claims  map[string]string   `json:"claims"`
}

type WarningRecord struct {
	Reason      string    `json:"reason"`
	ModeratorID string    `json:"moderatorId"`
	IssuedAt    time.Time `json:"issuedAt"`
}

type PromptRecord struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Prompt string `json:"prompt"`
}

type Gateway struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewGateway(dir string, logger *zap.Logger) (*Gateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Gateway{dir: dir, logger: logger}, nil
}

func (g *Gateway) SaveGuildConfigs(configs map[string]GuildConfigRecord) error {
	return g.write(guildConfigFile, configs)
}

func (g *Gateway) LoadGuildConfigs() map[string]GuildConfigRecord {
	configs := make(map[string]GuildConfigRecord)
	g.read(guildConfigFile, &configs)
	return configs
}

func (g *Gateway) SaveTickets(snapshot TicketsSnapshot) error {
	return g.write(ticketsFile, snapshot)
}

func (g *Gateway) LoadTickets() TicketsSnapshot {
	snapshot := TicketsSnapshot{
		Counter: make(map[string]int),
		Active:  make(map[string][]string),
		Claims:  make(map[string]string),
	}
	g.read(ticketsFile, &snapshot)
	if snapshot.Counter == nil {
		snapshot.Counter = make(map[string]int)
	}
	if snapshot.Active == nil {
		snapshot.Active = make(map[string][]string)
	}
	if snapshot.Claims == nil {
		snapshot.Claims = make(map[string]string)
	}
	return snapshot
}

func (g *Gateway) SaveSupportRoles(roles map[string][]string) error {
	return g.write(supportRolesFile, roles)
}

func (g *Gateway) LoadSupportRoles() map[string][]string {
	roles := make(map[string][]string)
	g.read(supportRolesFile, &roles)
	return roles
}

func (g *Gateway) SaveVerifyRoles(roles map[string]string) error {
	return g.write(verifyRolesFile, roles)
}

func (g *Gateway) LoadVerifyRoles() map[string]string {
	roles := make(map[string]string)
	g.read(verifyRolesFile, &roles)
	return roles
}

func (g *Gateway) SaveWarnings(warnings map[string][]WarningRecord) error {
	return g.write(warningsFile, warnings)
}

func (g *Gateway) LoadWarnings() map[string][]WarningRecord {
	warnings := make(map[string][]WarningRecord)
	g.read(warningsFile, &warnings)
	return warnings
}

func (g *Gateway) SavePrompts(prompts map[string]map[string]PromptRecord) error {
	return g.write(promptsFile, prompts)
}

func (g *Gateway) LoadPrompts() map[string]map[string]PromptRecord {
	prompts := make(map[string]map[string]PromptRecord)
	g.read(promptsFile, &prompts)
	return prompts
}

// write marshals value and replaces the collection file atomically via a
// temp file and rename, so a crash mid-write never leaves a torn document.
func (g *Gateway) write(name string, value any) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(g.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// read fills out from the collection file if it exists and parses; on the
// first run (no file) or a malformed file it leaves out at its defaults.
func (g *Gateway) read(name string, out any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	path := filepath.Join(g.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.logger.Info("collection file absent, starting fresh", zap.String("file", name))
			return
		}
		g.logger.Warn("collection read failed, using defaults", zap.String("file", name), zap.Error(err))
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		g.logger.Warn("collection file malformed, using defaults", zap.String("file", name), zap.Error(err))
	}
}
