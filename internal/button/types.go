// Package button turns debounced button edges into press commands.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package button

import "time"

// EventType is the classification of a completed button interaction.
type EventType string

const (
	SinglePress EventType = "SINGLE_PRESS"
	DoublePress EventType = "DOUBLE_PRESS"
	LongPress   EventType = "LONG_PRESS"
	Other       EventType = "OTHER"
)

// Event is one classified interaction.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Presses is the number of short presses counted (0 for LongPress).
	Presses int
}

// Edge is a debounced transition in logical form (already active-low corrected).
type Edge struct {
	Pressed bool
	Time    time.Time
}

// Config tunes the classifier.
type Config struct {
	// MaxRepeatPresses is the highest press count distinguished. Reaching it
	// emits immediately without waiting for RepeatWindow.
	MaxRepeatPresses int
	// LongPress is the hold time that turns a press into LONG_PRESS.
	LongPress time.Duration
	// RepeatWindow is how long after a release another press still counts
	// towards the same interaction.
	RepeatWindow time.Duration
}

// DefaultConfig matches the lock's button wiring: single/double press,
// one-second long press.
func DefaultConfig() Config {
	return Config{
		MaxRepeatPresses: 2,
		LongPress:        time.Second,
		RepeatWindow:     300 * time.Millisecond,
	}
}
