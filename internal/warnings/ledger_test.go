package warnings

import (
	"testing"
	"time"

	"guildwarden/internal/storage"
)

type fakePersister struct {
	records map[string][]storage.WarningRecord
	calls   int
}

func (f *fakePersister) SaveWarnings(records map[string][]storage.WarningRecord) error {
	f.records = records
	f.calls++
	return nil
}

func TestAddAndList(t *testing.T) {
	persist := &fakePersister{}
	ledger := NewLedger(persist)
	now := time.Unix(5000, 0)

	count, err := ledger.Add("u1", "spamming", "mod1", now)
	if err != nil || count != 1 {
		t.Fatalf("Add = (%d, %v)", count, err)
	}
	count, err = ledger.Add("u1", "cursing", "mod2", now.Add(time.Minute))
	if err != nil || count != 2 {
		t.Fatalf("Add = (%d, %v)", count, err)
	}

	list := ledger.List("u1")
	if len(list) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(list))
	}
	if list[0].Reason != "spamming" || list[1].Reason != "cursing" {
		t.Fatalf("warnings out of order: %v", list)
	}
	if list[1].ModeratorID != "mod2" {
		t.Fatalf("moderator not recorded")
	}
	if len(ledger.List("u2")) != 0 {
		t.Fatalf("fresh user should have no warnings")
	}
	if persist.calls != 2 {
		t.Fatalf("expected 2 snapshots, got %d", persist.calls)
	}
}

func TestClear(t *testing.T) {
	persist := &fakePersister{}
	ledger := NewLedger(persist)
	now := time.Unix(5000, 0)

	ledger.Add("u1", "spamming", "mod1", now)
	ledger.Add("u1", "cursing", "mod1", now)

	previous, err := ledger.Clear("u1")
	if err != nil || previous != 2 {
		t.Fatalf("Clear = (%d, %v)", previous, err)
	}
	if len(ledger.List("u1")) != 0 {
		t.Fatalf("warnings remain after clear")
	}
	if _, ok := persist.records["u1"]; ok {
		t.Fatalf("cleared user still present in snapshot")
	}

	calls := persist.calls
	previous, err = ledger.Clear("u1")
	if err != nil || previous != 0 {
		t.Fatalf("second Clear = (%d, %v)", previous, err)
	}
	if persist.calls != calls {
		t.Fatalf("no-op clear should not snapshot")
	}
}

func TestRestore(t *testing.T) {
	persist := &fakePersister{}
	ledger := NewLedger(persist)
	ledger.Add("u1", "spamming", "mod1", time.Unix(5000, 0))

	restored := NewLedger(&fakePersister{})
	restored.Restore(persist.records)

	list := restored.List("u1")
	if len(list) != 1 || list[0].Reason != "spamming" {
		t.Fatalf("restored warnings = %v", list)
	}
}

func TestListReturnsCopy(t *testing.T) {
	ledger := NewLedger(&fakePersister{})
	ledger.Add("u1", "spamming", "mod1", time.Unix(5000, 0))

	list := ledger.List("u1")
	list[0].Reason = "mutated"
	if ledger.List("u1")[0].Reason != "spamming" {
		t.Fatalf("List exposed internal slice")
	}
}
