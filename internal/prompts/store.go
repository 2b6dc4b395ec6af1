// Package prompts records AI responses per channel so follow-up tooling
// can recover who prompted what. It shares the flat-file persistence
// family with the moderation collections.
package prompts

import (
	"sync"

	"guildwarden/internal/storage"
)

type Record struct {
	Type   string
	UserID string
	Prompt string
}

type Persister interface {
	SavePrompts(map[string]map[string]storage.PromptRecord) error
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]map[string]Record
	persist Persister
}

func NewStore(persist Persister) *Store {
	return &Store{
		entries: make(map[string]map[string]Record),
		persist: persist,
	}
}

func (s *Store) Restore(records map[string]map[string]storage.PromptRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for channelID, byMessage := range records {
		channel := make(map[string]Record, len(byMessage))
		for messageID, record := range byMessage {
			channel[messageID] = Record{Type: record.Type, UserID: record.UserID, Prompt: record.Prompt}
		}
		s.entries[channelID] = channel
	}
}

// Put binds a response message to the prompt that produced it.
func (s *Store) Put(channelID, messageID string, record Record) error {
	s.mu.Lock()
	channel := s.entries[channelID]
	if channel == nil {
		channel = make(map[string]Record)
		s.entries[channelID] = channel
	}
	channel[messageID] = record
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist.SavePrompts(snapshot)
}

func (s *Store) Get(channelID, messageID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.entries[channelID][messageID]
	return record, ok
}

func (s *Store) snapshotLocked() map[string]map[string]storage.PromptRecord {
	snapshot := make(map[string]map[string]storage.PromptRecord, len(s.entries))
	for channelID, byMessage := range s.entries {
		channel := make(map[string]storage.PromptRecord, len(byMessage))
		for messageID, record := range byMessage {
			channel[messageID] = storage.PromptRecord{Type: record.Type, UserID: record.UserID, Prompt: record.Prompt}
		}
		snapshot[channelID] = channel
	}
	return snapshot
}
