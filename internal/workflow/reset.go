package workflow

import (
	"log/slog"
	"time"
)

// Reset is the factory reset sequence: acknowledge with three blinks, erase
// network provisioning, erase the remote-protocol pairing identity, restart.
// Once started it is not cancellable and ends in a restart.
type Reset struct {
	indicator    Indicator
	provisioning Eraser
	pairing      Eraser
	restarter    Restarter
	log          *slog.Logger

	// Sleep is time.Sleep unless replaced by tests.
	Sleep func(time.Duration)

	guard oneShot
}

// NewReset wires the reset sequence to its collaborators.
func NewReset(ind Indicator, provisioning, pairing Eraser, restarter Restarter, log *slog.Logger) *Reset {
	if log == nil {
		log = discardLogger()
	}
	return &Reset{
		indicator:    ind,
		provisioning: provisioning,
		pairing:      pairing,
		restarter:    restarter,
		log:          log,
		Sleep:        time.Sleep,
	}
}

// Start runs the sequence in the background. It returns false, and does
// nothing, if a reset is already in progress.
func (r *Reset) Start() bool {
	if !r.guard.spawn(r.Run) {
		r.log.Warn("reset already in progress, ignoring trigger")
		return false
	}
	r.log.Info("resetting configuration")
	return true
}

// Running reports whether a reset is in progress.
func (r *Reset) Running() bool {
	return r.guard.active()
}

// Run executes the sequence on the calling goroutine. Erase failures are
// logged and do not stop the restart.
func (r *Reset) Run() {
	for i := 0; i < 3; i++ {
		blink(r.indicator, r.Sleep)
	}

	r.log.Info("resetting network provisioning")
	if err := r.provisioning.Erase(); err != nil {
		r.log.Error("provisioning erase failed", "error", err)
	}
	r.Sleep(settleDelay)

	r.log.Info("resetting pairing identity")
	if err := r.pairing.Erase(); err != nil {
		r.log.Error("pairing erase failed", "error", err)
	}
	r.Sleep(settleDelay)

	r.log.Info("restarting")
	if err := r.restarter.Restart(); err != nil {
		r.log.Error("restart failed", "error", err)
	}
}
