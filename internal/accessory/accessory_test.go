package accessory

import (
	"encoding/json"
	"net"
	"testing"
)

func TestNewIdentity(t *testing.T) {
	mac := net.HardwareAddr{0xb8, 0x27, 0xeb, 0x0a, 0x1b, 0xfc}

	tests := []struct {
		prefix   string
		wantName string
	}{
		{"Fechadura", "Fechadura-0A1BFC"},
		{"", "Lock-0A1BFC"},
	}
	for _, tt := range tests {
		id, err := NewIdentity(tt.prefix, mac)
		if err != nil {
			t.Fatalf("prefix %q: unexpected error: %v", tt.prefix, err)
		}
		if id.Name != tt.wantName {
			t.Errorf("prefix %q: name got %q, want %q", tt.prefix, id.Name, tt.wantName)
		}
		if id.SerialNumber != "B827EB0A1BFC" {
			t.Errorf("prefix %q: serial got %q, want B827EB0A1BFC", tt.prefix, id.SerialNumber)
		}
	}
}

func TestNewIdentityRejectsShortAddress(t *testing.T) {
	if _, err := NewIdentity("Lock", net.HardwareAddr{0x01, 0x02}); err == nil {
		t.Error("expected error for 2-octet address")
	}
}

func TestMultiSkipsNilAndPreservesOrder(t *testing.T) {
	var order []string
	a := NotifierFunc(func(c Characteristic, v int) { order = append(order, "a") })
	b := NotifierFunc(func(c Characteristic, v int) { order = append(order, "b") })

	n := Multi(a, nil, b)
	n.Notify(LockCurrentState, 1)

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("expected [a b], got %v", order)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Notify(LockTargetState, 0)
	r.Notify(LockCurrentState, 0)
	r.Notify(ContactState, 1)

	if got := r.For(LockCurrentState); len(got) != 1 || got[0] != 0 {
		t.Errorf("current state: got %v, want [0]", got)
	}
	if len(r.All()) != 3 {
		t.Errorf("expected 3 notifications, got %d", len(r.All()))
	}
	r.Reset()
	if len(r.All()) != 0 {
		t.Errorf("expected empty after reset, got %d", len(r.All()))
	}
}

func TestDescribeShape(t *testing.T) {
	id := Identity{Name: "Lock-0A1BFC", SerialNumber: "B827EB0A1BFC"}
	accs := Describe(id, Info{Manufacturer: "X", Model: "Z", FirmwareRevision: "0.0.0"})

	if len(accs) != 2 {
		t.Fatalf("expected 2 accessories, got %d", len(accs))
	}
	if accs[0].ID != 1 || accs[0].Category != CategoryDoorLock {
		t.Errorf("accessory 0: got id=%d category=%s", accs[0].ID, accs[0].Category)
	}
	if accs[1].ID != 2 || accs[1].Category != CategorySensor {
		t.Errorf("accessory 1: got id=%d category=%s", accs[1].ID, accs[1].Category)
	}

	ids := map[Characteristic]bool{}
	for _, a := range accs {
		for _, s := range a.Services {
			for _, c := range s.Characteristics {
				if c.ID != "" {
					ids[c.ID] = true
				}
			}
		}
	}
	for _, want := range []Characteristic{LockCurrentState, LockTargetState, LockControlPoint, ContactState} {
		if !ids[want] {
			t.Errorf("characteristic %s missing from model", want)
		}
	}
}

func TestFormatModel(t *testing.T) {
	id := Identity{Name: "Lock-0A1BFC", SerialNumber: "B827EB0A1BFC"}
	data, err := FormatModel(id, Info{Manufacturer: "X"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc struct {
		Accessories []Accessory `json:"accessories"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(doc.Accessories) != 2 {
		t.Errorf("expected 2 accessories, got %d", len(doc.Accessories))
	}
	if doc.Accessories[0].Services[0].Characteristics[2].Value != "B827EB0A1BFC" {
		t.Errorf("serial number: got %v", doc.Accessories[0].Services[0].Characteristics[2].Value)
	}
}
