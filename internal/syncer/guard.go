package syncer

import "sync"

// Guard impide que dos instancias de una misma operación multi-paso corran
// a la vez. Un refresh que llega con la operación en vuelo se descarta en
// silencio — no se encola: el siguiente tick del driver ya traerá datos
// igual de buenos.
type Guard struct {
	mu      sync.Mutex
	running map[string]bool
}

// NewGuard crea un Guard vacío.
func NewGuard() *Guard {
	return &Guard{running: make(map[string]bool)}
}

// TryEnter marca op como running. Devuelve false (sin efectos) si ya lo está;
// el caller debe saltarse la operación, no esperar.
func (g *Guard) TryEnter(op string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running[op] {
		return false
	}
	g.running[op] = true
	return true
}

// Leave libera op. Debe llamarse en todo camino de salida de la operación
// (defer inmediatamente después de un TryEnter exitoso) o la operación queda
// bloqueada para siempre.
func (g *Guard) Leave(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, op)
}
