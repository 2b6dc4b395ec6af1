// Package warnings keeps the per-user moderation warning history. The
// ledger is append-only: entries are added one at a time and only removed
// wholesale by an admin clear. Unlike the spam window it survives
// restarts, snapshotted alongside the other collections.
package warnings

import (
	"sync"
	"time"

	"guildwarden/internal/storage"
	"guildwarden/internal/utils"
)

type Warning struct {
	Reason      string
	ModeratorID string
	IssuedAt    time.Time
}

type Persister interface {
	SaveWarnings(map[string][]storage.WarningRecord) error
}

type Ledger struct {
	mu      sync.RWMutex
	userMu  *utils.KeyedMutex
	entries map[string][]Warning
	persist Persister
}

func NewLedger(persist Persister) *Ledger {
	return &Ledger{
		userMu:  utils.NewKeyedMutex(),
		entries: make(map[string][]Warning),
		persist: persist,
	}
}

func (l *Ledger) Restore(records map[string][]storage.WarningRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for userID, list := range records {
		warnings := make([]Warning, 0, len(list))
		for _, record := range list {
			warnings = append(warnings, Warning{
				Reason:      record.Reason,
				ModeratorID: record.ModeratorID,
				IssuedAt:    record.IssuedAt,
			})
		}
		l.entries[userID] = warnings
	}
}

// Add appends a warning and returns the user's new total.
func (l *Ledger) Add(userID, reason, moderatorID string, now time.Time) (int, error) {
	unlock := l.userMu.Lock(userID)
	defer unlock()

	l.mu.Lock()
	l.entries[userID] = append(l.entries[userID], Warning{
		Reason:      reason,
		ModeratorID: moderatorID,
		IssuedAt:    now,
	})
	count := len(l.entries[userID])
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	return count, l.persist.SaveWarnings(snapshot)
}

// Clear removes all of a user's warnings and returns how many there were.
func (l *Ledger) Clear(userID string) (int, error) {
	unlock := l.userMu.Lock(userID)
	defer unlock()

	l.mu.Lock()
	previous := len(l.entries[userID])
	if previous == 0 {
		l.mu.Unlock()
		return 0, nil
	}
	delete(l.entries, userID)
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	return previous, l.persist.SaveWarnings(snapshot)
}

// List returns the user's warnings in issue order, most recent last.
func (l *Ledger) List(userID string) []Warning {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Warning(nil), l.entries[userID]...)
}

func (l *Ledger) snapshotLocked() map[string][]storage.WarningRecord {
	snapshot := make(map[string][]storage.WarningRecord, len(l.entries))
	for userID, list := range l.entries {
		records := make([]storage.WarningRecord, 0, len(list))
		for _, warning := range list {
			records = append(records, storage.WarningRecord{
				Reason:      warning.Reason,
				ModeratorID: warning.ModeratorID,
				IssuedAt:    warning.IssuedAt,
			})
		}
		snapshot[userID] = records
	}
	return snapshot
}
