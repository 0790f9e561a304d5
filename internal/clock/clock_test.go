package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_UsesLocation(t *testing.T) {
	loc := time.FixedZone("shop", 3*3600)
	c := New(loc)

	assert.Equal(t, loc, c.Now().Location())
	assert.Equal(t, loc, c.Location())
	assert.Equal(t, time.UTC, New(nil).Location())
}

func TestFake_AdvanceFiresDueTickers(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := NewFake(start)
	tk := f.NewTicker(time.Minute)

	f.Advance(30 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("ticker fired early")
	default:
	}

	f.Advance(30 * time.Second)
	select {
	case got := <-tk.C():
		assert.Equal(t, start.Add(time.Minute), got)
	default:
		t.Fatal("ticker did not fire")
	}

	// several periods at once collapse into one tick
	f.Advance(5 * time.Minute)
	require.Len(t, tk.C(), 1)
	<-tk.C()

	f.Advance(time.Minute)
	assert.Len(t, tk.C(), 1)
}

func TestFake_StopRemovesTicker(t *testing.T) {
	f := NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	tk := f.NewTicker(time.Minute)
	assert.Equal(t, 1, f.ActiveTickers())

	tk.Stop()
	f.Advance(time.Hour)

	assert.Equal(t, 0, f.ActiveTickers())
	assert.Len(t, tk.C(), 0)
}

func TestFake_Set(t *testing.T) {
	f := NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	tk := f.NewTicker(time.Minute)

	f.Set(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, 11, f.Now().Day())
	assert.Len(t, tk.C(), 0)
}
