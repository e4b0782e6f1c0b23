package command

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sweeney/lock-controller/internal/accessory"
	"github.com/sweeney/lock-controller/internal/button"
	"github.com/sweeney/lock-controller/internal/gpio"
	"github.com/sweeney/lock-controller/internal/lock"
)

type fakeStarter struct {
	starts int
}

func (f *fakeStarter) Start() bool {
	f.starts++
	return true
}

type harness struct {
	machine *lock.Machine
	out     *gpio.FakeOutputs
	rec     *accessory.Recorder
	reset   *fakeStarter
	logs    *bytes.Buffer
	interp  *Interpreter
}

func newHarness() *harness {
	h := &harness{
		out:   gpio.NewFakeOutputs(),
		rec:   &accessory.Recorder{},
		reset: &fakeStarter{},
		logs:  &bytes.Buffer{},
	}
	h.machine = lock.NewMachine(h.out, h.rec)
	h.interp = NewInterpreter(h.machine, h.reset, slog.New(slog.NewTextHandler(h.logs, nil)))
	return h
}

func TestSinglePressFromSecured(t *testing.T) {
	h := newHarness()

	h.interp.Handle(button.Event{Type: button.SinglePress, Presses: 1})

	if !h.out.RelayOn() || !h.out.IndicatorOn() {
		t.Error("expected relay energized and indicator on")
	}
	if got := h.rec.For(accessory.LockTargetState); len(got) != 1 || got[0] != int(lock.Unsecured) {
		t.Errorf("target notifications: got %v, want [0]", got)
	}
	if got := h.rec.For(accessory.LockCurrentState); len(got) != 1 || got[0] != int(lock.Unsecured) {
		t.Errorf("current notifications: got %v, want [0]", got)
	}
}

func TestSinglePressWhenAlreadyUnsecured(t *testing.T) {
	h := newHarness()
	h.machine.SetTarget(0)
	h.rec.Reset()
	h.out.Reset()

	h.interp.Handle(button.Event{Type: button.SinglePress, Presses: 1})

	if len(h.rec.All()) != 0 {
		t.Errorf("expected no notifications, got %v", h.rec.All())
	}
	if len(h.out.Relay) != 1 || !h.out.RelayOn() || !h.out.IndicatorOn() {
		t.Error("expected outputs re-asserted to unsecured")
	}
}

func TestDoublePressLocks(t *testing.T) {
	h := newHarness()
	h.machine.SetTarget(0)
	h.rec.Reset()

	h.interp.Handle(button.Event{Type: button.DoublePress, Presses: 2})

	if h.machine.Current() != lock.Secured || h.machine.Target() != lock.Secured {
		t.Errorf("expected SECURED/SECURED, got %s/%s", h.machine.Current(), h.machine.Target())
	}
	if h.out.RelayOn() || h.out.IndicatorOn() {
		t.Error("expected relay released and indicator off")
	}
	if len(h.rec.All()) != 2 {
		t.Errorf("expected 2 notifications, got %v", h.rec.All())
	}
}

func TestLongPressStartsResetOnly(t *testing.T) {
	h := newHarness()
	h.machine.SetTarget(0)
	h.rec.Reset()
	h.out.Reset()

	h.interp.Handle(button.Event{Type: button.LongPress})

	if h.reset.starts != 1 {
		t.Errorf("expected reset started once, got %d", h.reset.starts)
	}
	if h.machine.Current() != lock.Unsecured || h.machine.Target() != lock.Unsecured {
		t.Errorf("long press must not touch lock state, got %s/%s", h.machine.Current(), h.machine.Target())
	}
	if len(h.out.Calls) != 0 || len(h.rec.All()) != 0 {
		t.Error("long press must not actuate or notify")
	}
}

func TestUnknownEventLoggedAndIgnored(t *testing.T) {
	h := newHarness()

	h.interp.Handle(button.Event{Type: button.Other, Presses: 5})

	if len(h.out.Calls) != 0 || len(h.rec.All()) != 0 || h.reset.starts != 0 {
		t.Error("unknown event must have no effect")
	}
	if !strings.Contains(h.logs.String(), "unknown button event") {
		t.Errorf("expected warning in log, got %q", h.logs.String())
	}
}

// TestEndToEndScenario follows boot, a remote unlock and two button locks.
func TestEndToEndScenario(t *testing.T) {
	h := newHarness()
	h.machine.Init()

	if h.machine.Current() != lock.Secured || h.machine.Target() != lock.Secured {
		t.Fatalf("boot: expected SECURED/SECURED")
	}
	h.rec.Reset()

	// Remote unlock
	h.machine.SetTarget(0)
	if !h.out.RelayOn() || !h.out.IndicatorOn() {
		t.Error("remote unlock: expected relay energized and indicator on")
	}
	if got := h.rec.For(accessory.LockCurrentState); len(got) != 1 || got[0] != int(lock.Unsecured) {
		t.Errorf("remote unlock: current notifications %v", got)
	}
	if got := h.rec.For(accessory.LockTargetState); len(got) != 1 || got[0] != int(lock.Unsecured) {
		t.Errorf("remote unlock: target notifications %v", got)
	}
	h.rec.Reset()

	// Double press locks and notifies
	h.interp.Handle(button.Event{Type: button.DoublePress, Presses: 2})
	if h.out.RelayOn() || h.out.IndicatorOn() {
		t.Error("double press: expected relay released and indicator off")
	}
	if got := h.rec.For(accessory.LockCurrentState); len(got) != 1 || got[0] != int(lock.Secured) {
		t.Errorf("double press: current notifications %v", got)
	}
	if got := h.rec.For(accessory.LockTargetState); len(got) != 1 || got[0] != int(lock.Secured) {
		t.Errorf("double press: target notifications %v", got)
	}
	h.rec.Reset()
	h.out.Reset()

	// Second double press re-asserts outputs silently
	h.interp.Handle(button.Event{Type: button.DoublePress, Presses: 2})
	if len(h.out.Relay) != 1 || h.out.RelayOn() || h.out.IndicatorOn() {
		t.Error("second double press: expected outputs re-asserted to secured")
	}
	if len(h.rec.All()) != 0 {
		t.Errorf("second double press: expected no notifications, got %v", h.rec.All())
	}
}
