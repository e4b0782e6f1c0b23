// Package gpio drives the lock's relay and indicator outputs and watches the
// button and door-contact inputs.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"log/slog"
	"sync"
	"time"
)

// Pin definitions (BCM numbering)
const (
	DefaultPinRelay     = 17
	DefaultPinIndicator = 27
	DefaultPinButton    = 22
	DefaultPinContact   = 23
)

// DefaultChip is the GPIO character device the lines are requested from.
const DefaultChip = "gpiochip0"

// Pin is a single output line. *gpiocdev.Line satisfies it.
type Pin interface {
	SetValue(value int) error
}

// Outputs is the logical view of the actuators used by the lock state
// machine and the workflows.
type Outputs interface {
	// SetRelay energizes (true) or releases (false) the lock relay.
	SetRelay(energized bool)

	// SetIndicator turns the status LED on or off.
	SetIndicator(on bool)
}

// Driver translates logical relay/indicator intents into physical levels.
// The indicator is wired active-low: on = physical 0.
// Safe for concurrent use.
type Driver struct {
	mu        sync.Mutex
	relay     Pin
	indicator Pin
	log       *slog.Logger
}

// NewDriver wraps the two output pins. A nil logger discards write errors.
func NewDriver(relay, indicator Pin, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(discard{}, nil))
	}
	return &Driver{relay: relay, indicator: indicator, log: log}
}

// SetRelay writes the relay level directly: energized = physical 1.
func (d *Driver) SetRelay(energized bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.relay.SetValue(level(energized)); err != nil {
		d.log.Error("relay write failed", "energized", energized, "error", err)
	}
}

// SetIndicator writes the inverted indicator level: on = physical 0.
func (d *Driver) SetIndicator(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.indicator.SetValue(level(!on)); err != nil {
		d.log.Error("indicator write failed", "on", on, "error", err)
	}
}

func level(high bool) int {
	if high {
		return 1
	}
	return 0
}

// InputConfig configures the input lines.
type InputConfig struct {
	Chip       string
	PinButton  int
	PinContact int
	Debounce   time.Duration
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
