package event

// Dispatcher routes a single event to handlers typed on its concrete
// variant. Once a handler reports the event as handled, later Dispatch calls
// for the same Dispatcher are skipped.
type Dispatcher struct {
	ev      Event
	handled bool
}

// NewDispatcher wraps e for dispatch.
func NewDispatcher(e Event) *Dispatcher {
	return &Dispatcher{ev: e}
}

// Event returns the wrapped event.
func (d *Dispatcher) Event() Event { return d.ev }

// Handled reports whether any handler consumed the event.
func (d *Dispatcher) Handled() bool { return d.handled }

// Dispatch invokes fn when the wrapped event is a T and has not been handled
// yet. It reports whether fn was invoked.
func Dispatch[T Event](d *Dispatcher, fn func(T) bool) bool {
	if d == nil || d.handled {
		return false
	}
	e, ok := d.ev.(T)
	if !ok {
		return false
	}
	if fn(e) {
		d.handled = true
	}
	return true
}
