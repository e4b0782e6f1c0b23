package mqtt

import "errors"

// Sentinel errors for MQTT operations.
var (
	// ErrNotConnected indicates the broker connection is down.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrInvalidPayload indicates an inbound message could not be decoded.
	ErrInvalidPayload = errors.New("mqtt: invalid payload")

	// ErrUnknownTopic indicates a message arrived on a topic we do not handle.
	ErrUnknownTopic = errors.New("mqtt: unknown topic")
)
