// Package contact republishes the door-contact sensor level as the contact
// sensor characteristic.
package contact

import (
	"sync"

	"github.com/sweeney/lock-controller/internal/accessory"
)

// Contact characteristic values.
const (
	Low  = 0
	High = 1
)

// Relay forwards every sensor level change to observers. It does no
// debouncing; the input line is debounced by the kernel.
type Relay struct {
	mu     sync.Mutex
	value  int
	notify accessory.Notifier
}

// NewRelay creates a relay with the published value at 0.
func NewRelay(notify accessory.Notifier) *Relay {
	if notify == nil {
		notify = accessory.Multi()
	}
	return &Relay{notify: notify}
}

// OnLevel stores 1 for a high level and 0 for low, then notifies.
func (r *Relay) OnLevel(high bool) {
	v := Low
	if high {
		v = High
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = v
	r.notify.Notify(accessory.ContactState, v)
}

// Value returns the last published value.
func (r *Relay) Value() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}
