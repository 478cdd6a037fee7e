package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	clock := newFakeClock(t0)
	d := NewDebouncer(clock, 2000*time.Millisecond)

	var fired []time.Time
	fn := func() { fired = append(fired, clock.Now()) }

	// peticiones en t=0, 100, 300 → UNA ejecución en t=300+2000=2300
	d.Request("dashboard", fn)
	clock.Advance(100 * time.Millisecond)
	d.Request("dashboard", fn)
	clock.Advance(200 * time.Millisecond)
	d.Request("dashboard", fn)

	clock.Advance(10 * time.Second)

	require.Len(t, fired, 1)
	assert.Equal(t, t0.Add(2300*time.Millisecond), fired[0])
}

func TestDebouncer_RunsImmediatelyAfterQuietPeriod(t *testing.T) {
	clock := newFakeClock(t0)
	d := NewDebouncer(clock, 2*time.Second)

	runs := 0
	d.Request("portfolio", func() { runs++ })
	clock.Advance(2 * time.Second)
	require.Equal(t, 1, runs)

	// la ventana de quietud ya pasó desde la última ejecución → corre ya,
	// sin esperar otro window
	clock.Advance(5 * time.Second)
	d.Request("portfolio", func() { runs++ })
	assert.Equal(t, 2, runs)
}

func TestDebouncer_OpsAreIndependent(t *testing.T) {
	clock := newFakeClock(t0)
	d := NewDebouncer(clock, time.Second)

	var dash, charts int
	d.Request("dashboard", func() { dash++ })
	d.Request("charts", func() { charts++ })

	clock.Advance(time.Second)
	assert.Equal(t, 1, dash)
	assert.Equal(t, 1, charts)
}

func TestDebouncer_SingleTimerPerOp(t *testing.T) {
	clock := newFakeClock(t0)
	d := NewDebouncer(clock, 2*time.Second)

	runs := 0
	// cada petición cancela y reemplaza el timer anterior, no se apilan
	for i := 0; i < 5; i++ {
		d.Request("dashboard", func() { runs++ })
		clock.Advance(500 * time.Millisecond)
	}
	clock.Advance(10 * time.Second)
	assert.Equal(t, 1, runs)
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := newFakeClock(t0)
	d := NewDebouncer(clock, time.Second)

	runs := 0
	d.Request("dashboard", func() { runs++ })
	d.Cancel("dashboard")

	clock.Advance(time.Minute)
	assert.Zero(t, runs)
}

func TestDebouncer_CancelAll(t *testing.T) {
	clock := newFakeClock(t0)
	d := NewDebouncer(clock, time.Second)

	runs := 0
	d.Request("dashboard", func() { runs++ })
	d.Request("charts", func() { runs++ })
	d.CancelAll()

	clock.Advance(time.Minute)
	assert.Zero(t, runs)
}
