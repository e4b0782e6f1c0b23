// Package status provides a thread-safe status tracker for the lock controller.
// It is fed by the same notification fan-out as the remote protocol and is
// read by the HTTP handlers and the lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/lock-controller/internal/accessory"
	"github.com/sweeney/lock-controller/internal/lock"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Broker         string
	TopicPrefix    string
	HTTPAddr       string
	HeartbeatMs    int64
	LongPressMs    int64
	RepeatWindowMs int64
}

// Counts tracks notifications since startup.
type Counts struct {
	Secured       int
	Unsecured     int
	ContactOpen   int
	ContactClosed int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Identity        accessory.Identity
	Current         lock.State
	Target          lock.State
	Contact         int
	ContactKnown    bool
	Counts          Counts
	ResetInProgress    bool
	IdentifyInProgress bool
	StartTime       time.Time
	Now             time.Time
	MQTTConnected   bool
	Network         *NetworkInfo
	Config          Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker. Lock states read Unknown until the first
// notification arrives.
func NewTracker(startTime time.Time, id accessory.Identity, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Identity:  id,
			Current:   lock.Unknown,
			Target:    lock.Unknown,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Notify records a characteristic change.
func (t *Tracker) Notify(c accessory.Characteristic, value int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch c {
	case accessory.LockCurrentState:
		t.snap.Current = lock.State(value)
		switch t.snap.Current {
		case lock.Secured:
			t.snap.Counts.Secured++
		case lock.Unsecured:
			t.snap.Counts.Unsecured++
		}
	case accessory.LockTargetState:
		t.snap.Target = lock.State(value)
	case accessory.ContactState:
		t.snap.Contact = value
		t.snap.ContactKnown = true
		if value != 0 {
			t.snap.Counts.ContactOpen++
		} else {
			t.snap.Counts.ContactClosed++
		}
	}
}

// SetResetInProgress flags a running factory reset.
func (t *Tracker) SetResetInProgress(running bool) {
	t.mu.Lock()
	t.snap.ResetInProgress = running
	t.mu.Unlock()
}

// SetIdentifyInProgress flags a running identify sequence.
func (t *Tracker) SetIdentifyInProgress(running bool) {
	t.mu.Lock()
	t.snap.IdentifyInProgress = running
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
