// Package mqtt exposes the accessories over MQTT: characteristic changes are
// published as retained values, and set/identify requests arrive as commands.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/lock-controller/internal/accessory"
)

// Availability payloads.
const (
	Online  = "online"
	Offline = "offline"
)

// Topics derives every topic from the per-device base "<prefix>/<serial>".
type Topics struct {
	Base string
}

// NewTopics builds the topic set for one device.
func NewTopics(prefix, serial string) Topics {
	return Topics{Base: strings.TrimSuffix(prefix, "/") + "/" + serial}
}

// Characteristic is where the value of c is published.
func (t Topics) Characteristic(c accessory.Characteristic) string {
	return t.Base + "/" + string(c)
}

// Set is where remote peers write c.
func (t Topics) Set(c accessory.Characteristic) string {
	return t.Characteristic(c) + "/set"
}

// IdentifyLock is the lock accessory's identify request topic.
func (t Topics) IdentifyLock() string { return t.Base + "/lock/identify" }

// IdentifyContact is the contact accessory's identify request topic.
func (t Topics) IdentifyContact() string { return t.Base + "/contact/identify" }

// Accessories carries the retained object model.
func (t Topics) Accessories() string { return t.Base + "/accessories" }

// Availability carries the retained online/offline flag (and the LWT).
func (t Topics) Availability() string { return t.Base + "/availability" }

// System carries lifecycle events.
func (t Topics) System() string { return t.Base + "/system" }

// Subscriptions lists the inbound topics.
func (t Topics) Subscriptions() []string {
	return []string{
		t.Set(accessory.LockTargetState),
		t.Set(accessory.LockControlPoint),
		t.IdentifyLock(),
		t.IdentifyContact(),
	}
}

// Retained lists every topic this device leaves retained on the broker.
// Clearing them removes the device's identity from the broker.
func (t Topics) Retained() []string {
	return []string{
		t.Accessories(),
		t.Availability(),
		t.Characteristic(accessory.LockCurrentState),
		t.Characteristic(accessory.LockTargetState),
		t.Characteristic(accessory.ContactState),
	}
}

// CommandKind identifies an inbound request.
type CommandKind string

const (
	CommandSetTarget       CommandKind = "SET_TARGET"
	CommandControlPoint    CommandKind = "CONTROL_POINT"
	CommandIdentifyLock    CommandKind = "IDENTIFY_LOCK"
	CommandIdentifyContact CommandKind = "IDENTIFY_CONTACT"
)

// Command is a decoded inbound request.
type Command struct {
	Kind CommandKind
	// Value is the requested target for CommandSetTarget.
	Value int
	// Payload is the raw message body.
	Payload []byte
}

// ParseCommand decodes a message received on one of t.Subscriptions().
// Set-target payloads must be a decimal integer; 0 means unsecured.
func ParseCommand(t Topics, topic string, payload []byte) (Command, error) {
	switch topic {
	case t.Set(accessory.LockTargetState):
		v, err := strconv.Atoi(strings.TrimSpace(string(payload)))
		if err != nil {
			return Command{}, fmt.Errorf("%w: target state %q", ErrInvalidPayload, payload)
		}
		return Command{Kind: CommandSetTarget, Value: v, Payload: payload}, nil
	case t.Set(accessory.LockControlPoint):
		return Command{Kind: CommandControlPoint, Payload: payload}, nil
	case t.IdentifyLock():
		return Command{Kind: CommandIdentifyLock, Payload: payload}, nil
	case t.IdentifyContact():
		return Command{Kind: CommandIdentifyContact, Payload: payload}, nil
	default:
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
}

// FormatValue encodes a characteristic value.
func FormatValue(value int) []byte {
	return []byte(strconv.Itoa(value))
}

// Client is the remote-protocol sink the core notifies.
type Client interface {
	accessory.Notifier

	// PublishModel publishes the retained accessory object model.
	PublishModel(payload []byte) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// ClearRetained erases every retained topic of this device.
	ClearRetained() error

	// IsConnected reports whether the broker connection is up.
	IsConnected() bool

	// Close disconnects from the broker.
	Close() error
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "RESET"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
