package syncer

// debounce.go — coalescing trailing-edge de peticiones de refresh.
//
// Una ráfaga de Request para la misma op produce UNA ejecución, window después
// de la petición más reciente. Cada petición nueva cancela y reemplaza el
// timer pendiente; nunca hay más de un timer por op. Si desde la última
// ejecución real ya pasó más que window, la op corre inmediatamente en vez de
// esperar otro window entero.

import (
	"sync"
	"time"
)

// DefaultDebounceWindow es la ventana de quietud por defecto.
const DefaultDebounceWindow = 2 * time.Second

// Debouncer coalesce ráfagas de refresh por nombre de operación.
type Debouncer struct {
	clock  Clock
	window time.Duration

	mu      sync.Mutex
	pending map[string]Timer
	lastRun map[string]time.Time
}

// NewDebouncer crea un Debouncer. window <= 0 usa DefaultDebounceWindow.
func NewDebouncer(clock Clock, window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		clock:   clock,
		window:  window,
		pending: make(map[string]Timer),
		lastRun: make(map[string]time.Time),
	}
}

// Request pide una ejecución de fn bajo la op dada.
//
// Máquina de estados por op: Idle → Scheduled(now+window) en la primera
// petición; peticiones mientras Scheduled re-arman el timer (trailing-edge:
// dispara window después de la ÚLTIMA petición). La excepción run-now aplica
// solo si la op ya corrió antes y la ventana de quietud ya había pasado.
func (d *Debouncer) Request(op string, fn func()) {
	d.mu.Lock()

	if t, ok := d.pending[op]; ok {
		t.Stop()
		delete(d.pending, op)
	}

	now := d.clock.Now()
	if last, ran := d.lastRun[op]; ran && now.Sub(last) >= d.window {
		d.mu.Unlock()
		d.run(op, fn)
		return
	}

	d.pending[op] = d.clock.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.pending, op)
		d.mu.Unlock()
		d.run(op, fn)
	})
	d.mu.Unlock()
}

// Cancel descarta la ejecución pendiente de op, si la hay.
func (d *Debouncer) Cancel(op string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.pending[op]; ok {
		t.Stop()
		delete(d.pending, op)
	}
}

// CancelAll descarta todas las ejecuciones pendientes. Lo usa Driver.Stop:
// parar el dashboard debe parar también los debounce en vuelo.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for op, t := range d.pending {
		t.Stop()
		delete(d.pending, op)
	}
}

func (d *Debouncer) run(op string, fn func()) {
	fn()
	d.mu.Lock()
	d.lastRun[op] = d.clock.Now()
	d.mu.Unlock()
}
