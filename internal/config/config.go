// Package config loads the driver configuration: the PLM serial channel,
// the devices behind it, and the optional MQTT bridge.
package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dverge/insteonplm/internal/protocol"
)

// Device type identifiers used in the config file.
const (
	TypeDimmer     = "dimmer"
	TypeThermostat = "thermostat"
)

// Config is the whole configuration file.
type Config struct {
	Serial  SerialConfig      `yaml:"serial"`
	MQTT    MQTTConfig        `yaml:"mqtt"`
	Devices map[string]Device `yaml:"devices"` // friendly name -> device
}

// SerialConfig describes the PLM serial channel.
type SerialConfig struct {
	Device             string `yaml:"device"`
	BaudRate           int    `yaml:"baud_rate,omitempty"`
	ReadTimeoutSeconds int    `yaml:"read_timeout_seconds,omitempty"`
}

// ReadTimeout returns the configured read timeout as a duration, zero
// when unset.
func (s SerialConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// MQTTConfig describes the optional MQTT bridge. An empty host disables
// the bridge.
type MQTTConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`
	Topic    string `yaml:"topic,omitempty"`

	// PollSeconds is how often the bridge refreshes device state.
	PollSeconds int `yaml:"poll_seconds,omitempty"`
}

// Device is one configured device: its dotted hex address label and type.
type Device struct {
	Address string `yaml:"address"`
	Type    string `yaml:"type"`

	// Zone and DeviceID parameterize thermostat schedule row identity.
	Zone     int `yaml:"zone,omitempty"`
	DeviceID int `yaml:"device_id,omitempty"`
}

// ParseAddress returns the device's 3-byte address.
func (d Device) ParseAddress() (protocol.Address, error) {
	return protocol.ParseAddress(d.Address)
}

// Load reads config from a YAML file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns a config with the usual PLM settings filled in.
func DefaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{
			Device:             "/dev/ttyUSB0",
			BaudRate:           19200,
			ReadTimeoutSeconds: 2,
		},
		MQTT: MQTTConfig{
			Port:        1883,
			ClientID:    "insteonplm-bridge",
			Topic:       "insteon",
			PollSeconds: 60,
		},
		Devices: make(map[string]Device),
	}
}

// Validate checks every configured device for a parseable address and a
// known type.
func (c *Config) Validate() error {
	for name, dev := range c.Devices {
		if _, err := dev.ParseAddress(); err != nil {
			return fmt.Errorf("device %q: %w", name, err)
		}
		switch dev.Type {
		case TypeDimmer, TypeThermostat:
		default:
			return fmt.Errorf("device %q: unknown type %q", name, dev.Type)
		}
	}
	return nil
}

// DevicesOfType returns the names of configured devices with the given
// type, sorted for stable iteration order.
func (c *Config) DevicesOfType(deviceType string) []string {
	var names []string
	for name, dev := range c.Devices {
		if dev.Type == deviceType {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Lookup finds a device by its friendly name.
func (c *Config) Lookup(name string) (Device, bool) {
	dev, ok := c.Devices[name]
	return dev, ok
}
