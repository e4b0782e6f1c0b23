// Package accessory describes the externally visible object model of the
// lock: two accessories, their characteristics, the device identity and the
// notification sink every state change flows into.
package accessory

import (
	"fmt"
	"net"
	"sync"
)

// Characteristic identifies a notifiable value of an accessory.
type Characteristic string

const (
	LockCurrentState Characteristic = "lock/current_state"
	LockTargetState  Characteristic = "lock/target_state"
	LockControlPoint Characteristic = "lock/control_point"
	ContactState     Characteristic = "contact/state"
)

// Notifier receives characteristic changes.
type Notifier interface {
	Notify(c Characteristic, value int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(c Characteristic, value int)

// Notify calls f.
func (f NotifierFunc) Notify(c Characteristic, value int) {
	f(c, value)
}

// Multi fans a notification out to every non-nil notifier, in order.
func Multi(ns ...Notifier) Notifier {
	var out multi
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

type multi []Notifier

func (m multi) Notify(c Characteristic, value int) {
	for _, n := range m {
		n.Notify(c, value)
	}
}

// Notification is one recorded Notify call.
type Notification struct {
	Characteristic Characteristic
	Value          int
}

// Recorder is a Notifier that keeps every notification. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records the notification.
func (r *Recorder) Notify(c Characteristic, value int) {
	r.mu.Lock()
	r.items = append(r.items, Notification{Characteristic: c, Value: value})
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// For returns the values notified for a single characteristic.
func (r *Recorder) For(c Characteristic) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, n := range r.items {
		if n.Characteristic == c {
			out = append(out, n.Value)
		}
	}
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}

// DefaultNamePrefix is used when no prefix is configured.
const DefaultNamePrefix = "Lock"

// Identity is derived once at boot and never changes.
type Identity struct {
	Name         string
	SerialNumber string
}

// NewIdentity derives the accessory name and serial number from a hardware
// address: name is "<prefix>-" plus the last three octets, serial is all six
// octets, both upper-case hex.
func NewIdentity(prefix string, mac net.HardwareAddr) (Identity, error) {
	if len(mac) != 6 {
		return Identity{}, fmt.Errorf("hardware address %q: want 6 octets, got %d", mac, len(mac))
	}
	if prefix == "" {
		prefix = DefaultNamePrefix
	}
	serial := fmt.Sprintf("%02X%02X%02X%02X%02X%02X", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
	return Identity{
		Name:         fmt.Sprintf("%s-%s", prefix, serial[6:]),
		SerialNumber: serial,
	}, nil
}

// Info holds the static accessory information strings.
type Info struct {
	Manufacturer     string
	Model            string
	FirmwareRevision string
}
