package mqtt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/lock-controller/internal/accessory"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
)

// Options configures a RealClient.
type Options struct {
	Broker     string
	ClientID   string
	Username   string
	Password   string
	Topics     Topics
	BufferSize int
	Log        *slog.Logger
}

// RealClient publishes to, and receives commands from, an actual MQTT broker.
type RealClient struct {
	client   paho.Client
	topics   Topics
	log      *slog.Logger
	commands chan Command
	done     chan struct{}

	mu     sync.Mutex
	buffer *ringBuffer
	model  []byte
}

// NewRealClient connects to the broker. Commands decoded from inbound
// messages are delivered on Commands(). The broker marks the device offline
// through the last will if the connection drops.
func NewRealClient(o Options) (*RealClient, error) {
	if o.Log == nil {
		o.Log = slog.Default()
	}
	c := &RealClient{
		topics:   o.Topics,
		log:      o.Log,
		commands: make(chan Command, 8),
		done:     make(chan struct{}),
		buffer:   newRingBuffer(o.BufferSize, o.Log),
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetUsername(o.Username).
		SetPassword(o.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(o.Topics.Availability(), Offline, 1, true).
		SetOnConnectHandler(func(paho.Client) { c.handleConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.log.Warn("connection lost", "error", err)
		})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		// ConnectRetry keeps trying in the background; notifications are
		// buffered until it succeeds.
		c.log.Warn("broker not reachable yet, retrying in background", "broker", o.Broker)
		return c, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return c, nil
}

// Commands delivers decoded inbound requests.
func (c *RealClient) Commands() <-chan Command {
	return c.commands
}

// handleConnect runs on every (re)connection: announce availability,
// republish the object model, replay buffered values, resubscribe.
func (c *RealClient) handleConnect() {
	c.log.Info("connected to broker")
	c.client.Publish(c.topics.Availability(), 1, true, Online)

	c.mu.Lock()
	model := c.model
	pending := c.buffer.drainAll()
	c.mu.Unlock()

	if model != nil {
		c.client.Publish(c.topics.Accessories(), 1, true, model)
	}
	for _, msg := range pending {
		c.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	}
	if len(pending) > 0 {
		c.log.Info("replayed buffered messages", "count", len(pending))
	}

	filters := make(map[string]byte)
	for _, t := range c.topics.Subscriptions() {
		filters[t] = 1
	}
	c.client.SubscribeMultiple(filters, c.handleMessage)
}

func (c *RealClient) handleMessage(_ paho.Client, msg paho.Message) {
	cmd, err := ParseCommand(c.topics, msg.Topic(), msg.Payload())
	if err != nil {
		c.log.Warn("rejected message", "topic", msg.Topic(), "error", err)
		return
	}
	select {
	case c.commands <- cmd:
	case <-c.done:
	}
}

// Notify publishes a characteristic value as a retained message. While the
// broker is unreachable the value is buffered and replayed on reconnect.
func (c *RealClient) Notify(ch accessory.Characteristic, value int) {
	c.publish(bufferedMsg{
		topic:    c.topics.Characteristic(ch),
		payload:  FormatValue(value),
		qos:      1,
		retained: true,
	})
}

// PublishModel publishes the retained object model and remembers it for
// reconnects.
func (c *RealClient) PublishModel(payload []byte) error {
	c.mu.Lock()
	c.model = payload
	c.mu.Unlock()
	return c.publishWait(c.topics.Accessories(), true, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.publishWait(c.topics.System(), event.Retained, payload)
}

// ClearRetained publishes an empty retained message on every retained topic,
// removing the device's identity from the broker.
func (c *RealClient) ClearRetained() error {
	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	c.mu.Lock()
	c.model = nil
	c.buffer.drainAll()
	c.mu.Unlock()

	var errs []error
	for _, t := range c.topics.Retained() {
		if err := c.publishWait(t, true, []byte{}); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

// IsConnected reports whether the broker connection is up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close marks the device offline and disconnects from the broker.
func (c *RealClient) Close() error {
	close(c.done)
	if c.client.IsConnectionOpen() {
		c.client.Publish(c.topics.Availability(), 1, true, Offline).WaitTimeout(publishTimeout)
	}
	c.client.Disconnect(disconnectQuiesce)
	return nil
}

func (c *RealClient) publish(msg bufferedMsg) {
	if !c.client.IsConnectionOpen() {
		c.mu.Lock()
		c.buffer.push(msg)
		c.mu.Unlock()
		return
	}

	token := c.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			c.log.Warn("publish timeout", "topic", msg.topic)
			return
		}
		if err := token.Error(); err != nil {
			c.log.Error("publish failed", "topic", msg.topic, "error", err)
		}
	}()
}

func (c *RealClient) publishWait(topic string, retained bool, payload []byte) error {
	// QoS 1 (at-least-once): lifecycle and identity messages must land
	token := c.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
