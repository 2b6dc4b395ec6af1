package antispam

import (
	"testing"
	"time"
)

func TestBurstTriggersOnce(t *testing.T) {
	detector := New(5, 6*time.Second)
	base := time.Unix(1000, 0)

	for i := 0; i < 4; i++ {
		if detector.ObserveAndCheck("u1", base.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("violation before threshold at message %d", i+1)
		}
	}
	if !detector.ObserveAndCheck("u1", base.Add(4*time.Second)) {
		t.Fatalf("expected violation on fifth message")
	}

	// The window is cleared on violation, the very next message starts over.
	if detector.ObserveAndCheck("u1", base.Add(4*time.Second)) {
		t.Fatalf("window not cleared after violation")
	}
}

func TestSpacedMessagesNeverTrigger(t *testing.T) {
	detector := New(5, 6*time.Second)
	base := time.Unix(1000, 0)

	for i := 0; i < 20; i++ {
		if detector.ObserveAndCheck("u1", base.Add(time.Duration(i)*7*time.Second)) {
			t.Fatalf("violation for spaced messages at message %d", i+1)
		}
	}
}

func TestUsersTrackedIndependently(t *testing.T) {
	detector := New(5, 6*time.Second)
	base := time.Unix(1000, 0)

	for i := 0; i < 4; i++ {
		detector.ObserveAndCheck("u1", base)
		detector.ObserveAndCheck("u2", base)
	}
	if !detector.ObserveAndCheck("u1", base) {
		t.Fatalf("expected violation for u1")
	}
	if detector.ObserveAndCheck("u3", base) {
		t.Fatalf("unexpected violation for fresh user")
	}
}

func TestObserveRecordsWithoutEnforcing(t *testing.T) {
	detector := New(5, 6*time.Second)
	base := time.Unix(1000, 0)

	for i := 0; i < 10; i++ {
		detector.Observe("u1", base)
	}
	// Windows advanced while enforcement was off, so re-enabling picks up
	// the already-full window on the next checked message.
	if !detector.ObserveAndCheck("u1", base) {
		t.Fatalf("expected violation once checking resumes")
	}
}
