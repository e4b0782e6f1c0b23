package lock

import (
	"testing"

	"github.com/sweeney/lock-controller/internal/accessory"
	"github.com/sweeney/lock-controller/internal/gpio"
)

func newTestMachine() (*Machine, *gpio.FakeOutputs, *accessory.Recorder) {
	out := gpio.NewFakeOutputs()
	rec := &accessory.Recorder{}
	return NewMachine(out, rec), out, rec
}

func TestNewMachineStartsSecured(t *testing.T) {
	m, out, rec := newTestMachine()

	if m.Current() != Secured {
		t.Errorf("expected current SECURED, got %s", m.Current())
	}
	if m.Target() != Secured {
		t.Errorf("expected target SECURED, got %s", m.Target())
	}
	if len(out.Calls) != 0 {
		t.Errorf("constructor should not touch outputs, got %v", out.Calls)
	}
	if len(rec.All()) != 0 {
		t.Errorf("constructor should not notify, got %v", rec.All())
	}
}

func TestInitAnnouncesCurrent(t *testing.T) {
	m, _, rec := newTestMachine()
	m.Init()

	got := rec.For(accessory.LockCurrentState)
	if len(got) != 1 || got[0] != int(Secured) {
		t.Errorf("expected one SECURED current notification, got %v", got)
	}
}

func TestLockUnlockLockSequence(t *testing.T) {
	m, out, rec := newTestMachine()

	m.Lock()
	m.Unlock()
	m.Lock()

	if m.Current() != Secured {
		t.Errorf("expected SECURED, got %s", m.Current())
	}
	got := rec.For(accessory.LockCurrentState)
	want := []int{int(Secured), int(Unsecured), int(Secured)}
	if len(got) != len(want) {
		t.Fatalf("expected %d current notifications, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	if len(rec.For(accessory.LockTargetState)) != 0 {
		t.Error("Lock/Unlock must not notify target")
	}
	if out.RelayOn() || out.IndicatorOn() {
		t.Error("expected relay released and indicator off after Lock")
	}
}

func TestUnlockActuates(t *testing.T) {
	m, out, _ := newTestMachine()
	m.Unlock()

	if !out.RelayOn() {
		t.Error("expected relay energized")
	}
	if !out.IndicatorOn() {
		t.Error("expected indicator on")
	}
	if m.Current() != Unsecured {
		t.Errorf("expected UNSECURED, got %s", m.Current())
	}
}

func TestLockIsIdempotent(t *testing.T) {
	m, out, rec := newTestMachine()
	m.Lock()
	m.Lock()

	if len(out.Relay) != 2 {
		t.Errorf("expected outputs re-asserted twice, got %d relay writes", len(out.Relay))
	}
	if len(rec.For(accessory.LockCurrentState)) != 2 {
		t.Errorf("expected two notifications, got %v", rec.All())
	}
}

func TestSetTargetKeepsCurrentEqualTarget(t *testing.T) {
	m, _, _ := newTestMachine()

	for _, v := range []int{0, 1, 1, 0, 0, 3, 2, 0, 255} {
		m.SetTarget(v)
		if m.Current() != m.Target() {
			t.Errorf("after SetTarget(%d): current %s != target %s", v, m.Current(), m.Target())
		}
		if m.Current() != Secured && m.Current() != Unsecured {
			t.Errorf("after SetTarget(%d): unexpected state %s", v, m.Current())
		}
	}
}

func TestSetTargetNumericContract(t *testing.T) {
	tests := []struct {
		value int
		want  State
		relay bool
	}{
		{0, Unsecured, true},
		{1, Secured, false},
		{2, Secured, false},
		{-1, Secured, false},
	}
	for _, tt := range tests {
		m, out, _ := newTestMachine()
		m.SetTarget(tt.value)
		if m.Target() != tt.want {
			t.Errorf("SetTarget(%d): target %s, want %s", tt.value, m.Target(), tt.want)
		}
		if out.RelayOn() != tt.relay {
			t.Errorf("SetTarget(%d): relay %v, want %v", tt.value, out.RelayOn(), tt.relay)
		}
	}
}

func TestSetTargetNotifiesCurrentThenTarget(t *testing.T) {
	m, _, rec := newTestMachine()
	m.SetTarget(0)

	got := rec.All()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %v", got)
	}
	if got[0].Characteristic != accessory.LockCurrentState || got[0].Value != int(Unsecured) {
		t.Errorf("first notification: got %+v", got[0])
	}
	if got[1].Characteristic != accessory.LockTargetState || got[1].Value != int(Unsecured) {
		t.Errorf("second notification: got %+v", got[1])
	}
}

func TestSetTargetSameValueStillNotifies(t *testing.T) {
	m, out, rec := newTestMachine()
	m.SetTarget(1)

	if len(rec.All()) != 2 {
		t.Errorf("remote path always notifies, got %v", rec.All())
	}
	if len(out.Relay) != 1 {
		t.Errorf("remote path always actuates, got %d relay writes", len(out.Relay))
	}
}

func TestRequestGuardSuppressesNotification(t *testing.T) {
	m, out, rec := newTestMachine()
	m.SetTarget(0)
	rec.Reset()
	out.Reset()

	changed := m.Request(Unsecured)

	if changed {
		t.Error("expected no change when target already UNSECURED")
	}
	if len(rec.All()) != 0 {
		t.Errorf("expected no notifications, got %v", rec.All())
	}
	if !out.RelayOn() || !out.IndicatorOn() {
		t.Error("outputs must be re-asserted to unsecured regardless of guard")
	}
}

func TestRequestChangeNotifiesTargetThenCurrent(t *testing.T) {
	m, out, rec := newTestMachine()

	changed := m.Request(Unsecured)

	if !changed {
		t.Error("expected change from SECURED")
	}
	got := rec.All()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %v", got)
	}
	if got[0].Characteristic != accessory.LockTargetState || got[0].Value != int(Unsecured) {
		t.Errorf("first notification: got %+v", got[0])
	}
	if got[1].Characteristic != accessory.LockCurrentState || got[1].Value != int(Unsecured) {
		t.Errorf("second notification: got %+v", got[1])
	}
	if !out.RelayOn() {
		t.Error("expected relay energized")
	}
	if m.Current() != Unsecured || m.Target() != Unsecured {
		t.Errorf("expected both UNSECURED, got current=%s target=%s", m.Current(), m.Target())
	}
}

func TestRequestRejectsUnreachableStates(t *testing.T) {
	m, out, rec := newTestMachine()

	for _, s := range []State{Jammed, Unknown} {
		if m.Request(s) {
			t.Errorf("Request(%s) should be rejected", s)
		}
	}
	if len(out.Calls) != 0 || len(rec.All()) != 0 {
		t.Error("rejected requests must not actuate or notify")
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Unsecured: "UNSECURED",
		Secured:   "SECURED",
		Jammed:    "JAMMED",
		Unknown:   "UNKNOWN",
		State(9):  "INVALID",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
