package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string       `json:"event,omitempty"`
	Reason          string       `json:"reason,omitempty"`
	Name            string       `json:"name"`
	SerialNumber    string       `json:"serial_number"`
	Current         string       `json:"current_state"`
	Target          string       `json:"target_state"`
	Contact         string       `json:"contact"`
	ResetInProgress bool         `json:"reset_in_progress"`
	Identifying     bool         `json:"identifying"`
	UptimeSeconds   int64        `json:"uptime_seconds"`
	StartTime       string       `json:"start_time"`
	Timestamp       string       `json:"timestamp"`
	MQTT            MQTTStatus   `json:"mqtt"`
	Counts          CountsJSON   `json:"counts"`
	Network         *NetworkJSON `json:"network,omitempty"`
	Config          ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of notification counts.
type CountsJSON struct {
	Secured       int `json:"secured"`
	Unsecured     int `json:"unsecured"`
	ContactOpen   int `json:"contact_open"`
	ContactClosed int `json:"contact_closed"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker         string `json:"broker"`
	TopicPrefix    string `json:"topic_prefix"`
	HTTPAddr       string `json:"http_addr"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	LongPressMs    int64  `json:"long_press_ms"`
	RepeatWindowMs int64  `json:"repeat_window_ms"`
}

// ContactString names the contact value. Unknown until the first reading.
func ContactString(snap Snapshot) string {
	switch {
	case !snap.ContactKnown:
		return "UNKNOWN"
	case snap.Contact != 0:
		return "OPEN"
	default:
		return "CLOSED"
	}
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Name:            snap.Identity.Name,
		SerialNumber:    snap.Identity.SerialNumber,
		Current:         snap.Current.String(),
		Target:          snap.Target.String(),
		Contact:         ContactString(snap),
		ResetInProgress: snap.ResetInProgress,
		Identifying:     snap.IdentifyInProgress,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Secured:       snap.Counts.Secured,
			Unsecured:     snap.Counts.Unsecured,
			ContactOpen:   snap.Counts.ContactOpen,
			ContactClosed: snap.Counts.ContactClosed,
		},
		Config: ConfigJSON{
			Broker:         snap.Config.Broker,
			TopicPrefix:    snap.Config.TopicPrefix,
			HTTPAddr:       snap.Config.HTTPAddr,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			LongPressMs:    snap.Config.LongPressMs,
			RepeatWindowMs: snap.Config.RepeatWindowMs,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
