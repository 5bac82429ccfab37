// Package clock is the time source for record stamps, uptime and rate
// windows. Package-level Now and Since read a replaceable default so tests
// can pin time without threading a Clock through every constructor.
package clock

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// StampLayout is the layout of human-facing stamps such as a user's last
// login ("2023-03-15 14:30:00").
const StampLayout = "2006-01-02 15:04:05"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

type wall struct{}

func (wall) Now() time.Time                  { return time.Now() }
func (wall) Since(t time.Time) time.Duration { return time.Since(t) }

// Wall is the system clock.
var Wall Clock = wall{}

type holder struct{ c Clock }

var current atomic.Pointer[holder]

func init() {
	current.Store(&holder{c: Wall})
}

// Use installs c as the package default and returns a func that restores
// the previous one.
func Use(c Clock) (restore func()) {
	prev := current.Swap(&holder{c: c})
	return func() { current.Store(prev) }
}

// Now reads the package default.
func Now() time.Time { return current.Load().c.Now() }

// Since reads the package default.
func Since(t time.Time) time.Duration { return current.Load().c.Since(t) }

// Stamp formats t with StampLayout.
func Stamp(t time.Time) string { return t.Format(StampLayout) }

// Manual only moves when told to.
type Manual struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManual returns a Manual clock reading t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *Manual) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// Set jumps to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// FormatUptime renders d as "10 days, 5 hours, 30 minutes". Hours are
// shown whenever days are; minutes are always shown.
func FormatUptime(d time.Duration) string {
	d = max(d, 0).Truncate(time.Minute)
	days := d / (24 * time.Hour)
	d %= 24 * time.Hour

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, units(int(days), "day"), units(int(d/time.Hour), "hour"))
	} else if h := d / time.Hour; h > 0 {
		parts = append(parts, units(int(h), "hour"))
	}
	parts = append(parts, units(int(d%time.Hour/time.Minute), "minute"))
	return strings.Join(parts, ", ")
}

func units(n int, unit string) string {
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}
