// Package schedule turns the UI tick counter into named periodic triggers.
package schedule

import (
	"strings"
	"time"
)

// Trigger names used by the session loop.
const (
	Fast = "fast"
	Slow = "slow"
)

// Scheduler counts loop ticks and answers whether a named trigger is due on
// the current tick. Periods are converted to tick counts once, at Register.
type Scheduler struct {
	interval time.Duration
	tick     uint64
	last     time.Time
	every    map[string]uint64
}

// New returns a scheduler for a loop ticking every interval.
func New(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Scheduler{interval: interval, every: make(map[string]uint64)}
}

// Register adds a trigger firing every period, rounded to whole ticks and
// never less than one tick.
func (s *Scheduler) Register(name string, period time.Duration) {
	n := uint64(period / s.interval)
	if n < 1 {
		n = 1
	}
	s.every[name] = n
}

// Every returns the tick count of a trigger, or 0 when unregistered.
func (s *Scheduler) Every(name string) uint64 {
	return s.every[name]
}

// Advance moves to the next tick.
func (s *Scheduler) Advance(now time.Time) {
	s.tick++
	s.last = now
}

// Due reports whether name fires on the current tick.
func (s *Scheduler) Due(name string) bool {
	n, ok := s.every[name]
	if !ok {
		return false
	}
	return s.tick%n == 0
}

func (s *Scheduler) Tick() uint64        { return s.tick }
func (s *Scheduler) LastTick() time.Time { return s.last }

func (s *Scheduler) Interval() time.Duration { return s.interval }

// Debouncer remembers the signature it last fired for.
type Debouncer struct {
	last  string
	fired bool
}

// Changed reports whether sig differs from the last signature it fired for,
// and records sig when it does. The first call always fires.
func (d *Debouncer) Changed(sig string) bool {
	if d.fired && sig == d.last {
		return false
	}
	d.fired = true
	d.last = sig
	return true
}

// Reset forgets the last signature so the next Changed fires.
func (d *Debouncer) Reset() {
	d.fired = false
	d.last = ""
}

// Signature joins parts with a separator that cannot appear in user text.
func Signature(parts ...string) string {
	return strings.Join(parts, "\x00")
}
