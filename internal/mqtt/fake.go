package mqtt

import (
	"sync"

	"github.com/sweeney/lock-controller/internal/accessory"
)

// FakeClient records everything published for test assertions.
type FakeClient struct {
	mu sync.Mutex

	// Notifications contains every characteristic change, in order.
	Notifications []accessory.Notification

	// Model is the last object model published.
	Model []byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// ClearCalls counts ClearRetained calls.
	ClearCalls int

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// ClearError, if set, will be returned by ClearRetained.
	ClearError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{Connected: true}
}

// Notify records the characteristic change.
func (f *FakeClient) Notify(c accessory.Characteristic, value int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Notifications = append(f.Notifications, accessory.Notification{Characteristic: c, Value: value})
}

// PublishModel records the object model.
func (f *FakeClient) PublishModel(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Model = payload
	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// ClearRetained counts the call.
func (f *FakeClient) ClearRetained() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClearCalls++
	if f.ClearError != nil {
		return f.ClearError
	}
	f.Model = nil
	return nil
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Values returns the values notified for one characteristic.
func (f *FakeClient) Values(c accessory.Characteristic) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, n := range f.Notifications {
		if n.Characteristic == c {
			out = append(out, n.Value)
		}
	}
	return out
}

// Events returns the names of the recorded system events.
func (f *FakeClient) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		out[i] = e.Event
	}
	return out
}

// Reset clears recorded data.
func (f *FakeClient) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Notifications = nil
	f.Model = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.ClearCalls = 0
	f.Closed = false
	f.PublishSystemError = nil
	f.ClearError = nil
}
