// Package mqtt bridges device state onto an MQTT broker.
//
// State is published as retained JSON under <topic>/<name>/state so a
// home-automation frontend always sees the last known state. Commands
// arrive on <topic>/cmd/<name>/<action> and are handed to the registered
// handler; the bridge itself knows nothing about the serial protocol.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/dverge/insteonplm/internal/config"
	"github.com/dverge/insteonplm/internal/device"
	"github.com/dverge/insteonplm/internal/logging"
)

// CommandHandler receives a command published to the bridge: the device's
// friendly name, the action segment of the topic, and the raw payload.
type CommandHandler func(deviceName, action string, payload []byte)

// Client handles MQTT communication for the bridge.
type Client struct {
	host      string
	port      int
	clientID  string
	baseTopic string
	client    paho.Client
	onCommand CommandHandler
}

// DimmerState is the JSON document published for a dimmer.
type DimmerState struct {
	Timestamp      string `json:"timestamp"`
	Address        string `json:"address"`
	On             bool   `json:"on"`
	Level          int    `json:"level"`
	ManualOverride bool   `json:"manual_override"`
	Error          bool   `json:"error"`
}

// ThermostatState is the JSON document published for a thermostat.
type ThermostatState struct {
	Timestamp   string  `json:"timestamp"`
	Address     string  `json:"address"`
	Mode        string  `json:"mode"`
	TargetHeat  int     `json:"target_heat"`
	TargetCool  int     `json:"target_cool"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Error       bool    `json:"error"`
}

// NewClient creates a bridge client from the MQTT section of the config.
func NewClient(cfg config.MQTTConfig) *Client {
	return &Client{
		host:      cfg.Host,
		port:      cfg.Port,
		clientID:  cfg.ClientID,
		baseTopic: cfg.Topic,
	}
}

// SetCommandHandler sets the callback for received commands. Must be
// called before Connect.
func (c *Client) SetCommandHandler(handler CommandHandler) {
	c.onCommand = handler
}

// Connect establishes the connection to the broker. The bridge announces
// itself on <topic>/bridge/status with a last-will of "offline" so
// consumers can tell a dead bridge from a quiet one.
func (c *Client) Connect() error {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", c.host, c.port))
	opts.SetClientID(c.clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	statusTopic := c.topic("bridge", "status")
	opts.SetWill(statusTopic, "offline", 1, true)

	opts.SetOnConnectHandler(func(client paho.Client) {
		logging.Info("connected to mqtt broker",
			zap.String("host", c.host),
			zap.Int("port", c.port))
		client.Publish(statusTopic, 1, true, "online")
		c.subscribe()
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		logging.Warn("mqtt connection lost", zap.Error(err))
	})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("connecting to mqtt broker: %w", token.Error())
	}
	return nil
}

// Disconnect publishes the offline status and drops the connection.
func (c *Client) Disconnect() {
	if c.client == nil {
		return
	}
	c.client.Publish(c.topic("bridge", "status"), 1, true, "offline")
	c.client.Disconnect(250)
}

// PublishDimmerState publishes the dimmer's tracked state.
func (c *Client) PublishDimmerState(name string, d *device.Dimmer) error {
	return c.publishJSON(c.topic(name, "state"), DimmerState{
		Timestamp:      time.Now().Format(time.RFC3339),
		Address:        d.Address().String(),
		On:             d.LastGetOn,
		Level:          d.LastGetLevel,
		ManualOverride: d.ManualOverride,
		Error:          d.ErrorStatus,
	})
}

// PublishThermostatState publishes the thermostat's tracked state.
func (c *Client) PublishThermostatState(name string, th *device.Thermostat) error {
	return c.publishJSON(c.topic(name, "state"), ThermostatState{
		Timestamp:   time.Now().Format(time.RFC3339),
		Address:     th.Address().String(),
		Mode:        th.Mode.String(),
		TargetHeat:  th.TargetHeat,
		TargetCool:  th.TargetCool,
		Temperature: th.ActualTemp,
		Humidity:    th.ActualHumi,
		Error:       th.ErrorStatus,
	})
}

func (c *Client) publishJSON(topic string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding state for %s: %w", topic, err)
	}
	token := c.client.Publish(topic, 1, true, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// subscribe listens for commands under <topic>/cmd/#.
func (c *Client) subscribe() {
	cmdTopic := c.topic("cmd", "#")
	token := c.client.Subscribe(cmdTopic, 1, func(client paho.Client, msg paho.Message) {
		name, action, ok := c.splitCommandTopic(msg.Topic())
		if !ok {
			logging.Warn("ignoring malformed command topic", zap.String("topic", msg.Topic()))
			return
		}
		logging.Debug("mqtt command received",
			zap.String("device", name),
			zap.String("action", action))
		if c.onCommand != nil {
			c.onCommand(name, action, msg.Payload())
		}
	})
	if token.Wait() && token.Error() != nil {
		logging.Error("mqtt subscribe failed",
			zap.String("topic", cmdTopic),
			zap.Error(token.Error()))
	}
}

// splitCommandTopic extracts device name and action from
// <base>/cmd/<name>/<action>.
func (c *Client) splitCommandTopic(topic string) (name, action string, ok bool) {
	rest, found := strings.CutPrefix(topic, c.baseTopic+"/cmd/")
	if !found {
		return "", "", false
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (c *Client) topic(segments ...string) string {
	return c.baseTopic + "/" + strings.Join(segments, "/")
}
