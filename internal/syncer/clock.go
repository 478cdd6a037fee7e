package syncer

import "time"

// Clock abstrae el tiempo para que debounce, cache y driver sean testeables
// con tiempo simulado en vez de esperar timers reales.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer es el handle de un timer pendiente.
type Timer interface {
	// Stop cancela el timer. Devuelve false si ya disparó o ya fue cancelado.
	Stop() bool
}

// realClock delega en el paquete time.
type realClock struct{}

// RealClock devuelve el reloj de sistema.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
