package gpio

import "sync"

// FakePin is a test double that records every level written to it.
type FakePin struct {
	mu sync.Mutex

	// Levels contains every value passed to SetValue, in order.
	Levels []int

	// WriteError, if set, will be returned by SetValue (the level is not recorded).
	WriteError error
}

// NewFakePin creates an empty FakePin.
func NewFakePin() *FakePin {
	return &FakePin{}
}

// SetValue records the level.
func (f *FakePin) SetValue(value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Levels = append(f.Levels, value)
	return nil
}

// Last returns the most recently written level, or -1 if nothing was written.
func (f *FakePin) Last() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Levels) == 0 {
		return -1
	}
	return f.Levels[len(f.Levels)-1]
}

// Count returns how many times the given level was written.
func (f *FakePin) Count(value int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.Levels {
		if l == value {
			n++
		}
	}
	return n
}

// Reset clears recorded levels.
func (f *FakePin) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Levels = nil
	f.WriteError = nil
}

// FakeOutputs records logical output intents. Used where the physical
// inversion is not under test.
type FakeOutputs struct {
	mu sync.Mutex

	// Relay and Indicator hold every logical value written, in order.
	Relay     []bool
	Indicator []bool

	// Calls records "relay"/"indicator" in call order.
	Calls []string
}

// NewFakeOutputs creates an empty FakeOutputs.
func NewFakeOutputs() *FakeOutputs {
	return &FakeOutputs{}
}

// SetRelay records the relay intent.
func (f *FakeOutputs) SetRelay(energized bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Relay = append(f.Relay, energized)
	f.Calls = append(f.Calls, "relay")
}

// SetIndicator records the indicator intent.
func (f *FakeOutputs) SetIndicator(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Indicator = append(f.Indicator, on)
	f.Calls = append(f.Calls, "indicator")
}

// RelayOn reports the last relay intent (false if never written).
func (f *FakeOutputs) RelayOn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Relay) > 0 && f.Relay[len(f.Relay)-1]
}

// IndicatorOn reports the last indicator intent (false if never written).
func (f *FakeOutputs) IndicatorOn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Indicator) > 0 && f.Indicator[len(f.Indicator)-1]
}

// IndicatorOnCount returns how many times the indicator was switched on.
func (f *FakeOutputs) IndicatorOnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, on := range f.Indicator {
		if on {
			n++
		}
	}
	return n
}

// IndicatorHistory returns a copy of the indicator writes.
func (f *FakeOutputs) IndicatorHistory() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.Indicator...)
}

// Reset clears recorded writes.
func (f *FakeOutputs) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Relay = nil
	f.Indicator = nil
	f.Calls = nil
}
