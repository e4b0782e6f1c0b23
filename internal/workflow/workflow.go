// Package workflow runs the one-shot background sequences triggered by the
// button and the remote protocol: factory reset and identify.
//
// Each workflow is non-reentrant. Start spawns a detached goroutine and
// returns immediately; a trigger while a run is in progress is ignored.
package workflow

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Indicator is the part of the output driver the workflows blink.
type Indicator interface {
	SetIndicator(on bool)
}

// Eraser clears one piece of persisted configuration.
type Eraser interface {
	Erase() error
}

// EraserFunc adapts a function to Eraser.
type EraserFunc func() error

// Erase calls f.
func (f EraserFunc) Erase() error { return f() }

// Restarter restarts the device.
type Restarter interface {
	Restart() error
}

// RestarterFunc adapts a function to Restarter.
type RestarterFunc func() error

// Restart calls f.
func (f RestarterFunc) Restart() error { return f() }

// Blink timings.
const (
	blinkOn     = 100 * time.Millisecond
	blinkOff    = 100 * time.Millisecond
	groupPause  = 250 * time.Millisecond
	settleDelay = time.Second
)

// oneShot guards a workflow against concurrent runs.
type oneShot struct {
	running atomic.Bool
}

// spawn runs fn on a new goroutine unless a run is already active.
func (o *oneShot) spawn(fn func()) bool {
	if !o.running.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer o.running.Store(false)
		fn()
	}()
	return true
}

func (o *oneShot) active() bool {
	return o.running.Load()
}

func blink(ind Indicator, sleep func(time.Duration)) {
	ind.SetIndicator(true)
	sleep(blinkOn)
	ind.SetIndicator(false)
	sleep(blinkOff)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
