// Package antispam tracks per-user message bursts. Unlike a continuous
// sliding window, the detector keeps a fixed FIFO of the most recent
// threshold timestamps: it fires only when the FIFO is full and the span
// from oldest to newest fits inside the window, then clears, so it re-arms
// only after threshold fresh messages.
package antispam

import (
	"sync"
	"time"
)

type Detector struct {
	mu        sync.Mutex
	windows   map[string]*window
	threshold int
	span      time.Duration
}

type window struct {
	mu   sync.Mutex
	hits []time.Time
}

func New(threshold int, span time.Duration) *Detector {
	return &Detector{
		windows:   make(map[string]*window),
		threshold: threshold,
		span:      span,
	}
}

// Observe records a message timestamp without evaluating the burst rule.
// Used when spam enforcement is disabled for the guild: windows keep
// advancing so re-enabling mid-burst can trigger on the very next message.
func (d *Detector) Observe(userID string, now time.Time) {
	w := d.getWindow(userID)
	w.mu.Lock()
	defer w.mu.Unlock()
	d.push(w, now)
}

// ObserveAndCheck records a message timestamp and reports whether it
// completes a burst. On a violation the window is cleared so the user is
// not re-flagged on every subsequent message.
func (d *Detector) ObserveAndCheck(userID string, now time.Time) bool {
	w := d.getWindow(userID)
	w.mu.Lock()
	defer w.mu.Unlock()

	d.push(w, now)
	if len(w.hits) < d.threshold {
		return false
	}
	if now.Sub(w.hits[0]) > d.span {
		return false
	}
	w.hits = w.hits[:0]
	return true
}

func (d *Detector) push(w *window, now time.Time) {
	w.hits = append(w.hits, now)
	if len(w.hits) > d.threshold {
		w.hits = w.hits[len(w.hits)-d.threshold:]
	}
}

func (d *Detector) getWindow(userID string) *window {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := d.windows[userID]
	if w == nil {
		w = &window{}
		d.windows[userID] = w
	}
	return w
}
