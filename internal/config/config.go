// Package config loads the lock controller configuration.
//
// Loading order:
//  1. Default values (hardcoded)
//  2. YAML file values, when a path is given
//  3. Environment variables (LOCKCTL_SECTION_KEY)
//
// Secrets (MQTT password, InfluxDB token) are best supplied through the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/lock-controller/internal/gpio"
)

// Config is the root configuration structure.
type Config struct {
	Device    DeviceConfig   `yaml:"device"`
	GPIO      GPIOConfig     `yaml:"gpio"`
	Button    ButtonConfig   `yaml:"button"`
	MQTT      MQTTConfig     `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig `yaml:"influxdb"`
	HTTP      HTTPConfig     `yaml:"http"`
	Reset     ResetConfig    `yaml:"reset"`
	Logging   LoggingConfig  `yaml:"logging"`
	Heartbeat time.Duration  `yaml:"heartbeat"`
}

// DeviceConfig holds accessory identity inputs.
type DeviceConfig struct {
	// Interface whose hardware address seeds the name and serial number.
	Interface        string `yaml:"interface"`
	NamePrefix       string `yaml:"name_prefix"`
	Manufacturer     string `yaml:"manufacturer"`
	Model            string `yaml:"model"`
	FirmwareRevision string `yaml:"firmware_revision"`
}

// GPIOConfig holds line assignments (BCM numbering).
type GPIOConfig struct {
	Chip         string        `yaml:"chip"`
	PinRelay     int           `yaml:"pin_relay"`
	PinIndicator int           `yaml:"pin_indicator"`
	PinButton    int           `yaml:"pin_button"`
	PinContact   int           `yaml:"pin_contact"`
	Debounce     time.Duration `yaml:"debounce"`
}

// ButtonConfig tunes press classification.
type ButtonConfig struct {
	MaxRepeatPresses int           `yaml:"max_repeat_presses"`
	LongPress        time.Duration `yaml:"long_press"`
	RepeatWindow     time.Duration `yaml:"repeat_window"`
	Tick             time.Duration `yaml:"tick"`
}

// MQTTConfig holds broker settings for the remote protocol.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	BufferSize  int    `yaml:"buffer_size"`
}

// InfluxDBConfig holds the optional event history sink.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// HTTPConfig holds the status server address. Empty disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// ResetConfig lists what a factory reset erases and how it restarts.
type ResetConfig struct {
	ProvisioningPaths []string `yaml:"provisioning_paths"`
	RestartCommand    []string `yaml:"restart_command"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config with the stock wiring and timings.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Interface:        "wlan0",
			NamePrefix:       "Lock",
			Manufacturer:     "X",
			Model:            "Z",
			FirmwareRevision: "0.0.0",
		},
		GPIO: GPIOConfig{
			Chip:         gpio.DefaultChip,
			PinRelay:     gpio.DefaultPinRelay,
			PinIndicator: gpio.DefaultPinIndicator,
			PinButton:    gpio.DefaultPinButton,
			PinContact:   gpio.DefaultPinContact,
			Debounce:     20 * time.Millisecond,
		},
		Button: ButtonConfig{
			MaxRepeatPresses: 2,
			LongPress:        time.Second,
			RepeatWindow:     300 * time.Millisecond,
			Tick:             20 * time.Millisecond,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "lock-controller",
			TopicPrefix: "lock",
			BufferSize:  64,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Reset: ResetConfig{
			RestartCommand: []string{"systemctl", "reboot"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Heartbeat: 15 * time.Minute,
	}
}

// Validate checks the fields the daemon cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required"))
	}
	if c.MQTT.TopicPrefix == "" {
		errs = append(errs, errors.New("mqtt.topic_prefix is required"))
	}
	if c.MQTT.BufferSize <= 0 {
		errs = append(errs, errors.New("mqtt.buffer_size must be positive"))
	}
	if c.GPIO.Chip == "" {
		errs = append(errs, errors.New("gpio.chip is required"))
	}
	pins := map[int]string{}
	for name, pin := range map[string]int{
		"pin_relay":     c.GPIO.PinRelay,
		"pin_indicator": c.GPIO.PinIndicator,
		"pin_button":    c.GPIO.PinButton,
		"pin_contact":   c.GPIO.PinContact,
	} {
		if pin < 0 {
			errs = append(errs, fmt.Errorf("gpio.%s must not be negative", name))
			continue
		}
		if other, dup := pins[pin]; dup {
			errs = append(errs, fmt.Errorf("gpio.%s and gpio.%s share pin %d", name, other, pin))
		}
		pins[pin] = name
	}
	if c.Button.MaxRepeatPresses < 1 {
		errs = append(errs, errors.New("button.max_repeat_presses must be at least 1"))
	}
	if c.Button.LongPress <= 0 {
		errs = append(errs, errors.New("button.long_press must be positive"))
	}
	if c.Button.Tick <= 0 {
		errs = append(errs, errors.New("button.tick must be positive"))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, errors.New("heartbeat must not be negative"))
	}
	if len(c.Reset.RestartCommand) == 0 {
		errs = append(errs, errors.New("reset.restart_command is required"))
	}
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, errors.New("influxdb.url and influxdb.bucket are required when enabled"))
	}

	return errors.Join(errs...)
}

// applyEnvOverrides applies LOCKCTL_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOCKCTL_DEVICE_INTERFACE"); v != "" {
		cfg.Device.Interface = v
	}
	if v := os.Getenv("LOCKCTL_DEVICE_NAME_PREFIX"); v != "" {
		cfg.Device.NamePrefix = v
	}

	if v := os.Getenv("LOCKCTL_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("LOCKCTL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("LOCKCTL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	if v := os.Getenv("LOCKCTL_INFLUXDB_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOCKCTL_INFLUXDB_ENABLED: %w", err)
		}
		cfg.InfluxDB.Enabled = enabled
	}
	if v := os.Getenv("LOCKCTL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("LOCKCTL_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}

	if v := os.Getenv("LOCKCTL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	return nil
}
