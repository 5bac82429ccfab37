package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUse_SwapsDefault(t *testing.T) {
	pinned := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	m := NewManual(pinned)

	restore := Use(m)
	assert.Equal(t, pinned, Now())
	m.Advance(90 * time.Second)
	assert.Equal(t, 90*time.Second, Since(pinned))

	restore()
	assert.WithinDuration(t, time.Now(), Now(), time.Second)
}

func TestManual(t *testing.T) {
	start := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)

	m.Advance(time.Hour)
	assert.Equal(t, time.Hour, m.Since(start))

	later := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	m.Set(later)
	assert.Equal(t, later, m.Now())
}

func TestStamp(t *testing.T) {
	assert.Equal(t, "2023-03-15 14:30:00", Stamp(time.Date(2023, 3, 15, 14, 30, 0, 0, time.UTC)))
}

func TestFormatUptime(t *testing.T) {
	tests := map[string]struct {
		d    time.Duration
		want string
	}{
		"zero":          {0, "0 minutes"},
		"negative":      {-time.Hour, "0 minutes"},
		"seconds only":  {59 * time.Second, "0 minutes"},
		"minutes":       {42 * time.Minute, "42 minutes"},
		"singular":      {time.Hour + time.Minute, "1 hour, 1 minute"},
		"days":          {10*24*time.Hour + 5*time.Hour + 30*time.Minute, "10 days, 5 hours, 30 minutes"},
		"day no hours":  {24*time.Hour + 3*time.Minute, "1 day, 0 hours, 3 minutes"},
		"whole hours":   {2*time.Hour + 30*time.Second, "2 hours, 0 minutes"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatUptime(tc.d))
		})
	}
}
