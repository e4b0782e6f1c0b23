package accessory

import "encoding/json"

// Accessory categories.
const (
	CategoryDoorLock = "door_lock"
	CategorySensor   = "sensor"
)

// Accessory is one entry of the published object model.
type Accessory struct {
	ID       int       `json:"aid"`
	Category string    `json:"category"`
	Services []Service `json:"services"`
}

// Service groups characteristics.
type Service struct {
	Type            string               `json:"type"`
	Primary         bool                 `json:"primary,omitempty"`
	Characteristics []CharacteristicInfo `json:"characteristics"`
}

// CharacteristicInfo describes a single characteristic. Static values carry
// Value; notifiable ones carry their ID.
type CharacteristicInfo struct {
	Type  string         `json:"type"`
	ID    Characteristic `json:"id,omitempty"`
	Value any            `json:"value,omitempty"`
	Perms []string       `json:"perms"`
}

var (
	permsRead      = []string{"pr"}
	permsNotify    = []string{"pr", "ev"}
	permsWrite     = []string{"pr", "pw", "ev"}
	permsWriteOnly = []string{"pw"}
)

// Describe builds the two-accessory object model: the door lock (id 1) and
// the contact sensor (id 2).
func Describe(id Identity, info Info) []Accessory {
	return []Accessory{
		{
			ID:       1,
			Category: CategoryDoorLock,
			Services: []Service{
				information(id, info),
				{
					Type:    "lock_mechanism",
					Primary: true,
					Characteristics: []CharacteristicInfo{
						{Type: "name", Value: "Lock", Perms: permsRead},
						{Type: "lock_current_state", ID: LockCurrentState, Perms: permsNotify},
						{Type: "lock_target_state", ID: LockTargetState, Perms: permsWrite},
					},
				},
				{
					Type: "lock_management",
					Characteristics: []CharacteristicInfo{
						{Type: "lock_control_point", ID: LockControlPoint, Perms: permsWriteOnly},
						{Type: "version", Value: "1", Perms: permsRead},
					},
				},
			},
		},
		{
			ID:       2,
			Category: CategorySensor,
			Services: []Service{
				information(id, info),
				{
					Type: "contact_sensor",
					Characteristics: []CharacteristicInfo{
						{Type: "name", Value: "Contact", Perms: permsRead},
						{Type: "contact_sensor_state", ID: ContactState, Perms: permsNotify},
					},
				},
			},
		},
	}
}

func information(id Identity, info Info) Service {
	return Service{
		Type: "accessory_information",
		Characteristics: []CharacteristicInfo{
			{Type: "name", Value: id.Name, Perms: permsRead},
			{Type: "manufacturer", Value: info.Manufacturer, Perms: permsRead},
			{Type: "serial_number", Value: id.SerialNumber, Perms: permsRead},
			{Type: "model", Value: info.Model, Perms: permsRead},
			{Type: "firmware_revision", Value: info.FirmwareRevision, Perms: permsRead},
			{Type: "identify", Perms: permsWriteOnly},
		},
	}
}

// FormatModel returns the JSON document published for the object model.
func FormatModel(id Identity, info Info) ([]byte, error) {
	return json.Marshal(struct {
		Accessories []Accessory `json:"accessories"`
	}{Describe(id, info)})
}
