package syncer

// driver.go — los dos ciclos periódicos del dashboard.
//
// Ciclo rápido: refresh de dashboard, con el refresh ancho de portfolio
// staggered unos segundos después para no mandar la ráfaga entera de golpe.
// Ciclo lento (~2× el rápido): refresh de charts. Stop cancela ambos timers
// y los debounce pendientes, pero NO aborta requests en vuelo: un fetch que
// ya salió completa y escribe la cache aunque nadie vaya a pintar el resultado.

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DriverConfig son los periodos de los ciclos.
type DriverConfig struct {
	FastInterval time.Duration // ciclo dashboard
	SlowInterval time.Duration // ciclo charts, ~2× fast
	Stagger      time.Duration // retraso del refresh ancho dentro del ciclo rápido
}

// DefaultDriverConfig devuelve los periodos de producción.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		FastInterval: 3 * time.Minute,
		SlowInterval: 6 * time.Minute,
		Stagger:      5 * time.Second,
	}
}

// Driver dispara los refresh periódicos contra el engine.
type Driver struct {
	clock  Clock
	engine *Engine
	cfg    DriverConfig

	mu      sync.Mutex
	running bool
	fast    Timer
	slow    Timer
	stagger Timer
}

// NewDriver crea un Driver parado.
func NewDriver(clock Clock, engine *Engine, cfg DriverConfig) *Driver {
	if cfg.FastInterval <= 0 {
		cfg = DefaultDriverConfig()
	}
	return &Driver{clock: clock, engine: engine, cfg: cfg}
}

// Start arranca ambos ciclos y dispara un primer refresh de dashboard
// inmediato. Idempotente: llamadas repetidas con el driver ya corriendo no
// duplican timers.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.fast = d.clock.AfterFunc(d.cfg.FastInterval, func() { d.fastTick(ctx) })
	d.slow = d.clock.AfterFunc(d.cfg.SlowInterval, func() { d.slowTick(ctx) })
	d.mu.Unlock()

	slog.Info("driver started",
		"fast", d.cfg.FastInterval,
		"slow", d.cfg.SlowInterval,
		"stagger", d.cfg.Stagger,
	)

	// primer ciclo sin esperar al primer tick
	d.engine.RequestDashboard(ctx)
	d.engine.RequestCharts(ctx)
}

// Stop cancela los timers periódicos, el stagger pendiente y los debounce
// pendientes. No toca los requests en vuelo.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	for _, t := range []Timer{d.fast, d.slow, d.stagger} {
		if t != nil {
			t.Stop()
		}
	}
	d.fast, d.slow, d.stagger = nil, nil, nil
	d.mu.Unlock()

	d.engine.CancelPending()
	slog.Info("driver stopped")
}

func (d *Driver) fastTick(ctx context.Context) {
	d.engine.RequestDashboard(ctx)

	d.mu.Lock()
	if d.running {
		// el refresh ancho va con retraso fijo tras el principal
		d.stagger = d.clock.AfterFunc(d.cfg.Stagger, func() {
			d.engine.RequestPortfolio(ctx)
		})
		d.fast = d.clock.AfterFunc(d.cfg.FastInterval, func() { d.fastTick(ctx) })
	}
	d.mu.Unlock()
}

func (d *Driver) slowTick(ctx context.Context) {
	d.engine.RequestCharts(ctx)

	d.mu.Lock()
	if d.running {
		d.slow = d.clock.AfterFunc(d.cfg.SlowInterval, func() { d.slowTick(ctx) })
	}
	d.mu.Unlock()
}
