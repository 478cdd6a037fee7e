package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T) (*Driver, *fakeClock, *stubSink) {
	t.Helper()
	clock := newFakeClock(t0)
	sink := &stubSink{}
	e := newTestEngine(newStubFetcher(), sink, clock)
	d := NewDriver(clock, e, DriverConfig{
		FastInterval: 3 * time.Minute,
		SlowInterval: 6 * time.Minute,
		Stagger:      5 * time.Second,
	})
	return d, clock, sink
}

func TestDriver_FirstCycleOnStart(t *testing.T) {
	d, clock, sink := newTestDriver(t)
	defer d.Stop()

	d.Start(context.Background())
	// el primer refresh pasa por el debouncer: dispara window (2s) después
	clock.Advance(2 * time.Second)

	assert.Equal(t, 1, sink.published())
	assert.Len(t, sink.charts, 1)
}

func TestDriver_FastCycleWithStagger(t *testing.T) {
	d, clock, sink := newTestDriver(t)
	defer d.Stop()

	d.Start(context.Background())
	clock.Advance(2 * time.Second) // primer ciclo
	require.Equal(t, 1, sink.published())

	// tick rápido en t=3m: la ventana de quietud ya pasó → publica en el acto
	clock.Advance(3 * time.Minute)
	assert.Equal(t, 2, sink.published())

	// el refresh ancho va staggered 5s tras el tick, más su window de debounce
	clock.Advance(10 * time.Second)
	assert.Equal(t, 3, sink.published())
}

func TestDriver_SlowCycleIsIndependent(t *testing.T) {
	d, clock, sink := newTestDriver(t)
	defer d.Stop()

	d.Start(context.Background())
	clock.Advance(2 * time.Second)
	require.Len(t, sink.charts, 1)

	// tick lento en t=6m, debounce → 6m+2s
	clock.Advance(6 * time.Minute)
	assert.Len(t, sink.charts, 2)
}

func TestDriver_StartIsIdempotent(t *testing.T) {
	d, clock, sink := newTestDriver(t)
	defer d.Stop()

	d.Start(context.Background())
	d.Start(context.Background())
	d.Start(context.Background())

	clock.Advance(2 * time.Second)
	// un solo ciclo inicial: sin timers duplicados
	assert.Equal(t, 1, sink.published())

	clock.Advance(3 * time.Minute)
	assert.Equal(t, 2, sink.published())
}

func TestDriver_StopCancelsEverything(t *testing.T) {
	d, clock, sink := newTestDriver(t)

	d.Start(context.Background())
	clock.Advance(2 * time.Second)
	require.Equal(t, 1, sink.published())

	// Stop con un debounce recién pedido pendiente
	d.Stop()
	clock.Advance(time.Hour)

	assert.Equal(t, 1, sink.published())
	assert.Len(t, sink.charts, 1)
}

func TestDriver_StopThenStartResumes(t *testing.T) {
	d, clock, sink := newTestDriver(t)
	defer d.Stop()

	d.Start(context.Background())
	clock.Advance(2 * time.Second)
	d.Stop()

	d.Start(context.Background())
	clock.Advance(2 * time.Second)
	assert.Equal(t, 2, sink.published())
}
