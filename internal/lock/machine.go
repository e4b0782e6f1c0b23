package lock

import (
	"sync"

	"github.com/sweeney/lock-controller/internal/accessory"
	"github.com/sweeney/lock-controller/internal/gpio"
)

// Machine is the lock state machine. Every transition actuates the outputs
// synchronously and then updates current state, so current always reflects
// the last actuation. Safe for concurrent use: all transitions are
// serialized on one mutex.
type Machine struct {
	mu      sync.Mutex
	out     gpio.Outputs
	notify  accessory.Notifier
	current State
	target  State
}

// NewMachine creates a machine in the physical default: relay released,
// current and target Secured. It does not touch the outputs.
func NewMachine(out gpio.Outputs, notify accessory.Notifier) *Machine {
	if notify == nil {
		notify = accessory.Multi()
	}
	return &Machine{
		out:     out,
		notify:  notify,
		current: Secured,
		target:  Secured,
	}
}

// Init announces the boot state to observers.
func (m *Machine) Init() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify.Notify(accessory.LockCurrentState, int(m.current))
}

// Lock releases the relay, switches the indicator off and reports Secured.
// Idempotent: repeating it re-asserts the outputs and re-notifies.
func (m *Machine) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actuate(Secured)
	m.setCurrent(Secured)
}

// Unlock energizes the relay, switches the indicator on and reports Unsecured.
func (m *Machine) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actuate(Unsecured)
	m.setCurrent(Unsecured)
}

// SetTarget is the remote entry point. It records the target, actuates
// unconditionally and notifies current then target. 0 unlocks, any other
// value locks.
func (m *Machine) SetTarget(value int) {
	s := FromValue(value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.target = s
	m.actuate(s)
	m.setCurrent(s)
	m.notify.Notify(accessory.LockTargetState, int(m.target))
}

// Request is the local (button) entry point. The outputs are always
// re-asserted; state and notifications only change when the target differs.
// It reports whether the target changed.
func (m *Machine) Request(s State) bool {
	if s != Secured && s != Unsecured {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.actuate(s)
	if m.target == s {
		return false
	}
	m.target = s
	m.notify.Notify(accessory.LockTargetState, int(m.target))
	m.setCurrent(s)
	return true
}

// Current returns the state of the last actuation.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Target returns the last requested state.
func (m *Machine) Target() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// actuate drives the outputs for s. Caller holds mu.
func (m *Machine) actuate(s State) {
	unsecured := s == Unsecured
	m.out.SetRelay(unsecured)
	m.out.SetIndicator(unsecured)
}

// setCurrent records and announces the actuated state. Caller holds mu.
func (m *Machine) setCurrent(s State) {
	m.current = s
	m.notify.Notify(accessory.LockCurrentState, int(m.current))
}
