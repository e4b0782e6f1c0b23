package button

import "time"

// Classifier tracks press/release timing and emits classified events.
// Not safe for concurrent use: feed it from a single goroutine.
type Classifier struct {
	cfg Config

	pressed     bool
	pressedAt   time.Time
	longFired   bool
	count       int
	lastRelease time.Time
}

// NewClassifier creates a classifier. Zero or negative fields in cfg fall
// back to DefaultConfig values.
func NewClassifier(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.MaxRepeatPresses <= 0 {
		cfg.MaxRepeatPresses = def.MaxRepeatPresses
	}
	if cfg.LongPress <= 0 {
		cfg.LongPress = def.LongPress
	}
	if cfg.RepeatWindow <= 0 {
		cfg.RepeatWindow = def.RepeatWindow
	}
	return &Classifier{cfg: cfg}
}

// Process takes a new edge and returns any events it completes.
// Redundant edges (press while pressed, release while released) are ignored.
func (c *Classifier) Process(e Edge) []Event {
	// A pending long press may have matured before this edge arrived.
	events := c.Tick(e.Time)

	if e.Pressed {
		if c.pressed {
			return events
		}
		c.pressed = true
		c.pressedAt = e.Time
		c.longFired = false
		return events
	}

	if !c.pressed {
		return events
	}
	c.pressed = false

	if c.longFired {
		// Release ending a long press is swallowed.
		c.longFired = false
		return events
	}

	c.count++
	c.lastRelease = e.Time
	if c.count >= c.cfg.MaxRepeatPresses {
		events = append(events, c.emit(e.Time))
	}
	return events
}

// Tick advances time without an edge. It fires LONG_PRESS once the hold time
// is reached and closes a press sequence once the repeat window has passed.
func (c *Classifier) Tick(now time.Time) []Event {
	if c.pressed {
		if !c.longFired && now.Sub(c.pressedAt) >= c.cfg.LongPress {
			c.longFired = true
			c.count = 0
			return []Event{{Timestamp: now, Type: LongPress}}
		}
		return nil
	}

	if c.count > 0 && now.Sub(c.lastRelease) >= c.cfg.RepeatWindow {
		return []Event{c.emit(now)}
	}
	return nil
}

// Pending reports whether an interaction is in progress (held, or released
// with the repeat window still open).
func (c *Classifier) Pending() bool {
	return c.pressed || c.count > 0
}

func (c *Classifier) emit(now time.Time) Event {
	n := c.count
	c.count = 0
	return Event{Timestamp: now, Type: typeForCount(n), Presses: n}
}

func typeForCount(n int) EventType {
	switch n {
	case 1:
		return SinglePress
	case 2:
		return DoublePress
	default:
		return Other
	}
}
