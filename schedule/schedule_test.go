package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RegisterRoundsToTicks(t *testing.T) {
	s := New(100 * time.Millisecond)
	s.Register(Fast, 500*time.Millisecond)
	s.Register(Slow, 3*time.Second)
	s.Register("tiny", time.Millisecond)

	assert.Equal(t, uint64(5), s.Every(Fast))
	assert.Equal(t, uint64(30), s.Every(Slow))
	assert.Equal(t, uint64(1), s.Every("tiny"))
	assert.Equal(t, uint64(0), s.Every("missing"))
}

func TestScheduler_Due(t *testing.T) {
	s := New(100 * time.Millisecond)
	s.Register(Fast, 500*time.Millisecond)

	var fired []uint64
	base := time.Now()
	for i := 0; i < 12; i++ {
		s.Advance(base.Add(time.Duration(i) * s.Interval()))
		if s.Due(Fast) {
			fired = append(fired, s.Tick())
		}
	}
	assert.Equal(t, []uint64{5, 10}, fired)
	assert.Equal(t, uint64(12), s.Tick())
	assert.Equal(t, base.Add(11*s.Interval()), s.LastTick())
	assert.False(t, s.Due("missing"))
}

func TestDebouncer(t *testing.T) {
	var d Debouncer
	assert.True(t, d.Changed(""), "first check fires")
	assert.False(t, d.Changed(""))
	assert.True(t, d.Changed("a"))
	assert.False(t, d.Changed("a"))

	d.Reset()
	assert.True(t, d.Changed("a"))
}

// Several edits inside one fast window produce a single query for the
// latest signature.
func TestDebouncer_OneQueryPerWindow(t *testing.T) {
	s := New(100 * time.Millisecond)
	s.Register(Fast, 500*time.Millisecond)
	var d Debouncer
	d.Changed(Signature("mod", ""))

	query := ""
	var issued []string
	edits := map[uint64]string{6: "s", 7: "so", 8: "sod", 9: "sodi"}

	now := time.Now()
	for i := 0; i < 10; i++ {
		s.Advance(now)
		if e, ok := edits[s.Tick()]; ok {
			query = e
		}
		if s.Due(Fast) && d.Changed(Signature("mod", query)) {
			issued = append(issued, query)
		}
	}
	assert.Equal(t, []string{"sodi"}, issued)
}

func TestSignature(t *testing.T) {
	assert.NotEqual(t, Signature("ab", "c"), Signature("a", "bc"))
	assert.Equal(t, Signature("a", "b"), Signature("a", "b"))
}
