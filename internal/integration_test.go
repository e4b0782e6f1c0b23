package internal

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/lock-controller/internal/accessory"
	"github.com/sweeney/lock-controller/internal/button"
	"github.com/sweeney/lock-controller/internal/command"
	"github.com/sweeney/lock-controller/internal/contact"
	"github.com/sweeney/lock-controller/internal/gpio"
	"github.com/sweeney/lock-controller/internal/lock"
	"github.com/sweeney/lock-controller/internal/mqtt"
	"github.com/sweeney/lock-controller/internal/platform"
	"github.com/sweeney/lock-controller/internal/status"
	"github.com/sweeney/lock-controller/internal/workflow"
)

var (
	start    = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	identity = accessory.Identity{Name: "Lock-CCDDEE", SerialNumber: "AABBCCDDEEFF"}
	topics   = mqtt.NewTopics("lock", identity.SerialNumber)
)

// rig wires the real packages together over fake pins and a fake broker.
type rig struct {
	relay      *gpio.FakePin
	indicator  *gpio.FakePin
	driver     *gpio.Driver
	client     *mqtt.FakeClient
	tracker    *status.Tracker
	machine    *lock.Machine
	contact    *contact.Relay
	classifier *button.Classifier
	buttons    *command.Interpreter
	reset      *workflow.Reset
	identify   *workflow.Identify

	provisioning string
	restarted    chan struct{}

	mu     sync.Mutex
	sleeps []time.Duration
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		relay:     gpio.NewFakePin(),
		indicator: gpio.NewFakePin(),
		client:    mqtt.NewFakeClient(),
		tracker:   status.NewTracker(start, identity, status.Config{Broker: "tcp://localhost:1883"}),
		restarted: make(chan struct{}),
	}
	r.driver = gpio.NewDriver(r.relay, r.indicator, nil)

	r.provisioning = filepath.Join(t.TempDir(), "wifi.conf")
	if err := os.WriteFile(r.provisioning, []byte("ssid=home"), 0o600); err != nil {
		t.Fatal(err)
	}

	notify := accessory.Multi(r.client, r.tracker)
	r.machine = lock.NewMachine(r.driver, notify)
	r.contact = contact.NewRelay(notify)
	r.classifier = button.NewClassifier(button.DefaultConfig())

	r.reset = workflow.NewReset(
		r.driver,
		platform.ProvisioningEraser{Paths: []string{r.provisioning}},
		workflow.EraserFunc(r.client.ClearRetained),
		workflow.RestarterFunc(func() error {
			close(r.restarted)
			return nil
		}),
		nil,
	)
	r.reset.Sleep = r.sleep
	r.identify = workflow.NewIdentify(r.driver, nil)
	r.identify.Sleep = r.sleep
	r.buttons = command.NewInterpreter(r.machine, r.reset, nil)

	r.machine.Init()
	return r
}

func (r *rig) sleep(d time.Duration) {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
}

func (r *rig) edge(pressed bool, at time.Time) {
	for _, ev := range r.classifier.Process(button.Edge{Pressed: pressed, Time: at}) {
		r.buttons.Handle(ev)
	}
}

func (r *rig) tick(at time.Time) {
	for _, ev := range r.classifier.Tick(at) {
		r.buttons.Handle(ev)
	}
}

func (r *rig) deliver(t *testing.T, topic, payload string) {
	t.Helper()
	cmd, err := mqtt.ParseCommand(topics, topic, []byte(payload))
	if err != nil {
		t.Fatalf("ParseCommand(%s): %v", topic, err)
	}
	switch cmd.Kind {
	case mqtt.CommandSetTarget:
		r.machine.SetTarget(cmd.Value)
	case mqtt.CommandIdentifyLock:
		r.identify.Start()
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// TestIntegrationBootRemoteButton covers boot, a remote unlock and a local
// re-lock, checking physical pin levels along the way.
func TestIntegrationBootRemoteButton(t *testing.T) {
	r := newRig(t)

	if got := r.client.Values(accessory.LockCurrentState); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("boot: current notifications %v, want [1]", got)
	}
	if len(r.relay.Levels) != 0 {
		t.Errorf("boot must not actuate, relay writes %v", r.relay.Levels)
	}

	r.deliver(t, topics.Set(accessory.LockTargetState), "0")
	if r.relay.Last() != 1 || r.indicator.Last() != 0 {
		t.Errorf("after unlock: relay=%d indicator=%d, want 1/0", r.relay.Last(), r.indicator.Last())
	}

	r.edge(true, start)
	r.edge(false, start.Add(60*time.Millisecond))
	r.edge(true, start.Add(200*time.Millisecond))
	r.edge(false, start.Add(260*time.Millisecond))

	if r.relay.Last() != 0 || r.indicator.Last() != 1 {
		t.Errorf("after re-lock: relay=%d indicator=%d, want 0/1", r.relay.Last(), r.indicator.Last())
	}

	want := []accessory.Notification{
		{Characteristic: accessory.LockCurrentState, Value: 1},
		{Characteristic: accessory.LockCurrentState, Value: 0},
		{Characteristic: accessory.LockTargetState, Value: 0},
		{Characteristic: accessory.LockTargetState, Value: 1},
		{Characteristic: accessory.LockCurrentState, Value: 1},
	}
	if !reflect.DeepEqual(r.client.Notifications, want) {
		t.Errorf("notifications:\n got %v\nwant %v", r.client.Notifications, want)
	}

	snap := r.tracker.Snapshot()
	if snap.Current != lock.Secured || snap.Target != lock.Secured {
		t.Errorf("tracker: %s/%s, want SECURED/SECURED", snap.Current, snap.Target)
	}
	if snap.Counts.Secured != 2 || snap.Counts.Unsecured != 1 {
		t.Errorf("tracker counts: %+v", snap.Counts)
	}
}

func TestIntegrationSinglePressRepeatedUnlock(t *testing.T) {
	r := newRig(t)
	r.client.Reset()

	for i := 0; i < 2; i++ {
		at := start.Add(time.Duration(i) * time.Second)
		r.edge(true, at)
		r.edge(false, at.Add(50*time.Millisecond))
		r.tick(at.Add(400 * time.Millisecond))
	}

	// Second unlock actuates again without notifying.
	if got := r.relay.Count(1); got != 2 {
		t.Errorf("relay energized %d times, want 2", got)
	}
	if len(r.client.Notifications) != 2 {
		t.Errorf("expected 2 notifications, got %v", r.client.Notifications)
	}
}

func TestIntegrationRejectsMalformedTarget(t *testing.T) {
	_, err := mqtt.ParseCommand(topics, topics.Set(accessory.LockTargetState), []byte("open"))
	if !errors.Is(err, mqtt.ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestIntegrationContact(t *testing.T) {
	r := newRig(t)
	r.client.Reset()

	r.contact.OnLevel(true)
	r.contact.OnLevel(false)

	if got := r.client.Values(accessory.ContactState); !reflect.DeepEqual(got, []int{1, 0}) {
		t.Errorf("contact values: got %v, want [1 0]", got)
	}

	var parsed status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(r.tracker.Snapshot()), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Status.Contact != "CLOSED" {
		t.Errorf("status contact: got %q, want CLOSED", parsed.Status.Contact)
	}
}

func TestIntegrationIdentify(t *testing.T) {
	r := newRig(t)
	r.deliver(t, topics.IdentifyLock(), "true")

	waitFor(t, "identify to finish", func() bool { return !r.identify.Running() })

	// Active-low: on is physical 0.
	if got := r.indicator.Count(0); got != 6 {
		t.Errorf("indicator on writes: got %d, want 6", got)
	}
	if r.indicator.Last() != 1 {
		t.Errorf("indicator should end off (physical 1), got %d", r.indicator.Last())
	}
	if len(r.relay.Levels) != 0 {
		t.Error("identify must not touch the relay")
	}
}

func TestIntegrationFactoryReset(t *testing.T) {
	r := newRig(t)
	if err := r.client.PublishModel([]byte(`{"accessories":[]}`)); err != nil {
		t.Fatal(err)
	}
	r.client.Reset()

	r.edge(true, start)
	r.tick(start.Add(1100 * time.Millisecond))

	select {
	case <-r.restarted:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for restart")
	}
	waitFor(t, "reset to finish", func() bool { return !r.reset.Running() })

	if _, err := os.Stat(r.provisioning); !os.IsNotExist(err) {
		t.Error("provisioning file should be erased")
	}
	if r.client.ClearCalls != 1 {
		t.Errorf("ClearRetained calls: got %d, want 1", r.client.ClearCalls)
	}
	if got := r.indicator.Count(0); got != 3 {
		t.Errorf("indicator on writes: got %d, want 3", got)
	}
	if len(r.client.Notifications) != 0 {
		t.Errorf("reset must not notify lock state, got %v", r.client.Notifications)
	}
	if r.machine.Current() != lock.Secured || r.machine.Target() != lock.Secured {
		t.Error("reset must not change lock state")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var settles int
	for _, d := range r.sleeps {
		if d >= time.Second {
			settles++
		}
	}
	if settles != 2 {
		t.Errorf("expected 2 settle delays, got sleeps %v", r.sleeps)
	}
}
