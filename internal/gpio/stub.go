//go:build !linux

package gpio

import (
	"errors"
	"log/slog"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealOutputs is not available on non-Linux platforms.
type RealOutputs struct {
	*Driver
}

// NewRealOutputs returns an error on non-Linux platforms.
func NewRealOutputs(chipName string, pinRelay, pinIndicator int, log *slog.Logger) (*RealOutputs, error) {
	return nil, errUnsupported
}

// Close is a no-op on non-Linux platforms.
func (r *RealOutputs) Close() error {
	return nil
}

// Watcher is not available on non-Linux platforms.
type Watcher struct{}

// WatchButton returns an error on non-Linux platforms.
func WatchButton(cfg InputConfig, fn func(pressed bool)) (*Watcher, error) {
	return nil, errUnsupported
}

// WatchContact returns an error on non-Linux platforms.
func WatchContact(cfg InputConfig, fn func(high bool)) (*Watcher, error) {
	return nil, errUnsupported
}

// ReadContact returns an error on non-Linux platforms.
func ReadContact(cfg InputConfig) (bool, error) {
	return false, errUnsupported
}

// Level is not implemented on non-Linux platforms.
func (w *Watcher) Level() (bool, error) {
	return false, errUnsupported
}

// Close is a no-op on non-Linux platforms.
func (w *Watcher) Close() error {
	return nil
}
