// Command lock-controller drives a relay-operated door lock from a push
// button and the MQTT remote protocol, and relays a door contact sensor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/lock-controller/internal/accessory"
	"github.com/sweeney/lock-controller/internal/button"
	"github.com/sweeney/lock-controller/internal/command"
	"github.com/sweeney/lock-controller/internal/config"
	"github.com/sweeney/lock-controller/internal/contact"
	"github.com/sweeney/lock-controller/internal/gpio"
	"github.com/sweeney/lock-controller/internal/history"
	"github.com/sweeney/lock-controller/internal/lock"
	"github.com/sweeney/lock-controller/internal/logging"
	"github.com/sweeney/lock-controller/internal/mqtt"
	"github.com/sweeney/lock-controller/internal/platform"
	"github.com/sweeney/lock-controller/internal/status"
	"github.com/sweeney/lock-controller/internal/web"
	"github.com/sweeney/lock-controller/internal/workflow"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	printState := flag.Bool("print-state", false, "Print identity and contact level and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	if err := run(*configPath, *printState); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, printState bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.Logging, version)

	mac, err := platform.HardwareAddr(cfg.Device.Interface)
	if err != nil {
		return fmt.Errorf("read hardware address: %w", err)
	}
	id, err := accessory.NewIdentity(cfg.Device.NamePrefix, mac)
	if err != nil {
		return fmt.Errorf("derive identity: %w", err)
	}

	inputs := gpio.InputConfig{
		Chip:       cfg.GPIO.Chip,
		PinButton:  cfg.GPIO.PinButton,
		PinContact: cfg.GPIO.PinContact,
		Debounce:   cfg.GPIO.Debounce,
	}

	// Print state mode
	if printState {
		high, err := gpio.ReadContact(inputs)
		if err != nil {
			return fmt.Errorf("read contact: %w", err)
		}
		fmt.Printf("name: %s, serial: %s, contact: %s\n", id.Name, id.SerialNumber, levelString(high))
		return nil
	}

	outputs, err := gpio.NewRealOutputs(cfg.GPIO.Chip, cfg.GPIO.PinRelay, cfg.GPIO.PinIndicator, logging.Component(log, "gpio"))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer outputs.Close()

	// Initialize MQTT
	model, err := accessory.FormatModel(id, accessory.Info{
		Manufacturer:     cfg.Device.Manufacturer,
		Model:            cfg.Device.Model,
		FirmwareRevision: cfg.Device.FirmwareRevision,
	})
	if err != nil {
		return fmt.Errorf("format accessory model: %w", err)
	}
	client, err := mqtt.NewRealClient(mqtt.Options{
		Broker:     cfg.MQTT.Broker,
		ClientID:   cfg.MQTT.ClientID,
		Username:   cfg.MQTT.Username,
		Password:   cfg.MQTT.Password,
		Topics:     mqtt.NewTopics(cfg.MQTT.TopicPrefix, id.SerialNumber),
		BufferSize: cfg.MQTT.BufferSize,
		Log:        logging.Component(log, "mqtt"),
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()
	if err := client.PublishModel(model); err != nil {
		log.Warn("failed to publish accessory model", "error", err)
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), id, status.Config{
		Broker:         cfg.MQTT.Broker,
		TopicPrefix:    cfg.MQTT.TopicPrefix,
		HTTPAddr:       cfg.HTTP.Addr,
		HeartbeatMs:    cfg.Heartbeat.Milliseconds(),
		LongPressMs:    cfg.Button.LongPress.Milliseconds(),
		RepeatWindowMs: cfg.Button.RepeatWindow.Milliseconds(),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	notifiers := []accessory.Notifier{client, tracker}
	sink, err := history.Connect(cfg.InfluxDB, id.SerialNumber, logging.Component(log, "history"))
	switch {
	case err == nil:
		defer sink.Close()
		notifiers = append(notifiers, sink)
	case errors.Is(err, history.ErrDisabled):
	default:
		log.Warn("history disabled", "error", err)
	}

	machine := lock.NewMachine(outputs, accessory.Multi(notifiers...))
	machine.Init()

	reset := workflow.NewReset(
		outputs,
		platform.ProvisioningEraser{Paths: cfg.Reset.ProvisioningPaths},
		workflow.EraserFunc(client.ClearRetained),
		platform.CommandRestarter{Command: cfg.Reset.RestartCommand},
		logging.Component(log, "reset"),
	)
	identify := workflow.NewIdentify(outputs, logging.Component(log, "identify"))

	classifier := button.NewClassifier(button.Config{
		MaxRepeatPresses: cfg.Button.MaxRepeatPresses,
		LongPress:        cfg.Button.LongPress,
		RepeatWindow:     cfg.Button.RepeatWindow,
	})

	d := &daemon{
		log:        log,
		machine:    machine,
		classifier: classifier,
		contact:    contact.NewRelay(accessory.Multi(notifiers...)),
		reset:      reset,
		identify:   identify,
		client:     client,
		tracker:    tracker,
	}
	d.interpreter = command.NewInterpreter(machine, announceReset{reset, d}, logging.Component(log, "button"))

	// Inputs. A failed line request leaves the daemon running without it.
	buttons := make(chan button.Edge, 16)
	contacts := make(chan bool, 16)

	if w, err := gpio.WatchButton(inputs, func(pressed bool) {
		buttons <- button.Edge{Pressed: pressed, Time: time.Now()}
	}); err != nil {
		log.Error("failed to initialize button", "pin", cfg.GPIO.PinButton, "error", err)
	} else {
		defer w.Close()
	}

	if w, err := gpio.WatchContact(inputs, func(high bool) {
		contacts <- high
	}); err != nil {
		log.Error("failed to initialize sensor", "pin", cfg.GPIO.PinContact, "error", err)
	} else {
		defer w.Close()
		if high, err := w.Level(); err == nil {
			contacts <- high
		}
	}

	d.publishSystem("STARTUP", "", true)

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, model)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http status server listening", "addr", cfg.HTTP.Addr)
	}

	log.Info("started",
		"name", id.Name,
		"serial", id.SerialNumber,
		"broker", cfg.MQTT.Broker,
		"heartbeat", cfg.Heartbeat,
	)

	tick := time.NewTicker(cfg.Button.Tick)
	defer tick.Stop()

	var heartbeat <-chan time.Time
	if cfg.Heartbeat > 0 {
		hb := time.NewTicker(cfg.Heartbeat)
		defer hb.Stop()
		heartbeat = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(d, sources{
		buttons:   buttons,
		contacts:  contacts,
		commands:  client.Commands(),
		tick:      tick.C,
		heartbeat: heartbeat,
		sig:       sigCh,
	})
}

// runner is a background workflow.
type runner interface {
	Start() bool
	Running() bool
}

// daemon holds everything the event loop mutates. Only runLoop touches it
// once the loop has started.
type daemon struct {
	log         *slog.Logger
	machine     *lock.Machine
	classifier  *button.Classifier
	interpreter *command.Interpreter
	contact     *contact.Relay
	reset       runner
	identify    runner
	client      mqtt.Client
	tracker     *status.Tracker
}

// sources are the event loop inputs. A nil channel never fires.
type sources struct {
	buttons   <-chan button.Edge
	contacts  <-chan bool
	commands  <-chan mqtt.Command
	tick      <-chan time.Time
	heartbeat <-chan time.Time
	sig       <-chan os.Signal
}

func runLoop(d *daemon, src sources) error {
	for {
		select {
		case s := <-src.sig:
			d.log.Info("shutting down", "signal", s.String())
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			d.publishSystem("SHUTDOWN", signalName, true)
			return nil

		case e := <-src.buttons:
			for _, ev := range d.classifier.Process(e) {
				d.handleButton(ev)
			}

		case t := <-src.tick:
			for _, ev := range d.classifier.Tick(t) {
				d.handleButton(ev)
			}

		case high := <-src.contacts:
			d.contact.OnLevel(high)

		case cmd := <-src.commands:
			d.handleCommand(cmd)

		case <-src.heartbeat:
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				d.tracker.SetNetwork(net)
			}
			d.publishSystem("HEARTBEAT", "", false)
		}

		d.refreshStatus()
	}
}

func (d *daemon) handleButton(ev button.Event) {
	d.log.Debug("button event", "type", ev.Type, "presses", ev.Presses)
	d.interpreter.Handle(ev)
}

func (d *daemon) handleCommand(cmd mqtt.Command) {
	switch cmd.Kind {
	case mqtt.CommandSetTarget:
		d.log.Info("remote target", "value", cmd.Value)
		d.machine.SetTarget(cmd.Value)
	case mqtt.CommandIdentifyLock:
		d.log.Info("lock identify")
		if !d.identify.Start() {
			d.log.Warn("identify already running")
		}
	case mqtt.CommandIdentifyContact:
		d.log.Info("door identify")
	case mqtt.CommandControlPoint:
		d.log.Debug("control point write ignored", "payload", string(cmd.Payload))
	default:
		d.log.Warn("unknown command", "kind", cmd.Kind)
	}
}

// refreshStatus copies state the tracker cannot observe through
// notifications.
func (d *daemon) refreshStatus() {
	d.tracker.SetMQTTConnected(d.client.IsConnected())
	d.tracker.SetResetInProgress(d.reset.Running())
	d.tracker.SetIdentifyInProgress(d.identify.Running())
}

// publishSystem sends a lifecycle event carrying a full status snapshot.
func (d *daemon) publishSystem(event, reason string, retained bool) {
	d.refreshStatus()
	snap := d.tracker.Snapshot()
	err := d.client.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   retained,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		d.log.Error("failed to publish system event", "event", event, "error", err)
		return
	}
	d.log.Info("published system event", "event", event)
}

// announceReset publishes RESET when a long press starts a factory reset.
type announceReset struct {
	runner
	d *daemon
}

func (a announceReset) Start() bool {
	if !a.runner.Start() {
		return false
	}
	a.d.publishSystem("RESET", "LONG_PRESS", false)
	return true
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func levelString(high bool) string {
	if high {
		return "HIGH"
	}
	return "LOW"
}
