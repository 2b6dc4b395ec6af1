package prompts

import (
	"testing"

	"guildwarden/internal/storage"
)

type fakePersister struct {
	records map[string]map[string]storage.PromptRecord
}

func (f *fakePersister) SavePrompts(records map[string]map[string]storage.PromptRecord) error {
	f.records = records
	return nil
}

func TestPutAndGet(t *testing.T) {
	persist := &fakePersister{}
	store := NewStore(persist)

	record := Record{Type: "ask", UserID: "u1", Prompt: "what is go"}
	if err := store.Put("c1", "m1", record); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Get("c1", "m1")
	if !ok || got != record {
		t.Fatalf("Get = (%v, %v)", got, ok)
	}
	if _, ok := store.Get("c1", "m2"); ok {
		t.Fatalf("unexpected hit for unknown message")
	}
	if persist.records["c1"]["m1"].Prompt != "what is go" {
		t.Fatalf("record not persisted")
	}
}

func TestRestore(t *testing.T) {
	persist := &fakePersister{}
	store := NewStore(persist)
	store.Put("c1", "m1", Record{Type: "generate", UserID: "u1", Prompt: "a story"})

	restored := NewStore(&fakePersister{})
	restored.Restore(persist.records)

	got, ok := restored.Get("c1", "m1")
	if !ok || got.Type != "generate" {
		t.Fatalf("restored record = (%v, %v)", got, ok)
	}
}
