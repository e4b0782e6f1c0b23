//go:build linux

package gpio

import (
	"fmt"
	"log/slog"

	"github.com/warthog618/go-gpiocdev"
)

// RealOutputs drives the relay and indicator lines on actual hardware.
type RealOutputs struct {
	*Driver
	chip      *gpiocdev.Chip
	relay     *gpiocdev.Line
	indicator *gpiocdev.Line
}

// NewRealOutputs requests the relay and indicator lines as outputs.
// Both start in the safe state: relay released, indicator off (physical 1).
func NewRealOutputs(chipName string, pinRelay, pinIndicator int, log *slog.Logger) (*RealOutputs, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	relay, err := chip.RequestLine(pinRelay, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pinRelay, err)
	}

	indicator, err := chip.RequestLine(pinIndicator, gpiocdev.AsOutput(1))
	if err != nil {
		relay.Close()
		chip.Close()
		return nil, fmt.Errorf("request indicator pin %d: %w", pinIndicator, err)
	}

	return &RealOutputs{
		Driver:    NewDriver(relay, indicator, log),
		chip:      chip,
		relay:     relay,
		indicator: indicator,
	}, nil
}

// Close releases the relay, switches the indicator off and frees the lines.
func (r *RealOutputs) Close() error {
	var errs []error

	if r.relay != nil {
		if err := r.relay.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("release relay: %w", err))
		}
		if err := r.relay.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay pin: %w", err))
		}
	}
	if r.indicator != nil {
		if err := r.indicator.SetValue(1); err != nil {
			errs = append(errs, fmt.Errorf("indicator off: %w", err))
		}
		if err := r.indicator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close indicator pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// Watcher delivers edge events from a single input line.
type Watcher struct {
	line *gpiocdev.Line
}

// WatchButton requests the button line (active-low, pull-up) and calls fn
// with the logical level (true = pressed) on every debounced transition. fn runs on the
// gpiocdev event goroutine and must not block.
func WatchButton(cfg InputConfig, fn func(pressed bool)) (*Watcher, error) {
	line, err := gpiocdev.RequestLine(cfg.Chip, cfg.PinButton,
		gpiocdev.AsActiveLow,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(cfg.Debounce),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			fn(evt.Type == gpiocdev.LineEventRisingEdge)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", cfg.PinButton, err)
	}
	return &Watcher{line: line}, nil
}

// WatchContact requests the door-contact line and calls fn with the physical
// level (true = high) on every debounced transition.
func WatchContact(cfg InputConfig, fn func(high bool)) (*Watcher, error) {
	line, err := gpiocdev.RequestLine(cfg.Chip, cfg.PinContact,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(cfg.Debounce),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			fn(evt.Type == gpiocdev.LineEventRisingEdge)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("request contact pin %d: %w", cfg.PinContact, err)
	}
	return &Watcher{line: line}, nil
}

// ReadContact samples the contact line once without watching it.
func ReadContact(cfg InputConfig) (bool, error) {
	line, err := gpiocdev.RequestLine(cfg.Chip, cfg.PinContact, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return false, fmt.Errorf("request contact pin %d: %w", cfg.PinContact, err)
	}
	defer line.Close()
	return readHigh(line)
}

// Level returns the current logical level of the watched line.
func (w *Watcher) Level() (bool, error) {
	return readHigh(w.line)
}

// Close releases the line.
func (w *Watcher) Close() error {
	if w.line == nil {
		return nil
	}
	if err := w.line.Close(); err != nil {
		return fmt.Errorf("close line: %w", err)
	}
	return nil
}

func readHigh(line *gpiocdev.Line) (bool, error) {
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read line: %w", err)
	}
	return v == 1, nil
}
