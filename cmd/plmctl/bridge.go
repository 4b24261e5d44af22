package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dverge/insteonplm/internal/config"
	"github.com/dverge/insteonplm/internal/device"
	"github.com/dverge/insteonplm/internal/logging"
	"github.com/dverge/insteonplm/internal/mqtt"
	"github.com/dverge/insteonplm/internal/serialport"
	"github.com/dverge/insteonplm/internal/transport"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the MQTT bridge",
	Long: `Poll all configured devices and publish their state to an MQTT broker.

State is published as retained JSON under <topic>/<name>/state every
poll interval. Commands are accepted on <topic>/cmd/<name>/<action>:

  dimmers:      on (payload: optional level 0-100), off
  thermostats:  mode (payload: mode code 4-10), up, down

The bridge runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runBridge,
}

// bridge owns the serial session and the device controllers. The PLM is a
// single half-duplex resource, so every serial exchange (poll loop or
// incoming command) is serialized behind plmMu.
type bridge struct {
	cfg   *config.Config
	mqtt  *mqtt.Client
	plmMu sync.Mutex

	dimmers     map[string]*device.Dimmer
	thermostats map[string]*device.Thermostat
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(cfg.Devices) == 0 {
		return fmt.Errorf("no devices configured in %s", configPath)
	}

	port, err := serialport.Open(serialport.Config{
		Device:      cfg.Serial.Device,
		BaudRate:    cfg.Serial.BaudRate,
		ReadTimeout: cfg.Serial.ReadTimeout(),
	})
	if err != nil {
		return err
	}
	defer port.Close()

	session := transport.NewSession(port)
	tracker := device.NewStatusTracker(nil)

	b := &bridge{
		cfg:         cfg,
		mqtt:        mqtt.NewClient(cfg.MQTT),
		dimmers:     make(map[string]*device.Dimmer),
		thermostats: make(map[string]*device.Thermostat),
	}
	for name, dev := range cfg.Devices {
		addr, err := dev.ParseAddress()
		if err != nil {
			return fmt.Errorf("device %q: %w", name, err)
		}
		switch dev.Type {
		case config.TypeDimmer:
			b.dimmers[name] = device.NewDimmer(addr, session, tracker)
		case config.TypeThermostat:
			b.thermostats[name] = device.NewThermostat(addr, session, tracker)
		}
	}

	b.mqtt.SetCommandHandler(b.handleCommand)
	if err := b.mqtt.Connect(); err != nil {
		return err
	}
	defer b.mqtt.Disconnect()

	interval := time.Duration(cfg.MQTT.PollSeconds) * time.Second
	logging.Info("bridge running",
		zap.Int("devices", len(cfg.Devices)),
		zap.Duration("poll_interval", interval))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	b.pollAll()
	for {
		select {
		case <-ticker.C:
			b.pollAll()
		case sig := <-stop:
			logging.Info("shutting down", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// pollAll refreshes every device and publishes the result. A failing
// device does not block the rest; its error flag rides along in the
// published state.
func (b *bridge) pollAll() {
	for name, d := range b.dimmers {
		b.plmMu.Lock()
		err := d.GetState()
		b.plmMu.Unlock()
		if err != nil {
			logging.Warn("dimmer poll failed", zap.String("device", name), zap.Error(err))
		}
		if err := b.mqtt.PublishDimmerState(name, d); err != nil {
			logging.Warn("publish failed", zap.String("device", name), zap.Error(err))
		}
	}
	for name, th := range b.thermostats {
		b.plmMu.Lock()
		err := th.GetState()
		b.plmMu.Unlock()
		if err != nil {
			logging.Warn("thermostat poll failed", zap.String("device", name), zap.Error(err))
		}
		if err := b.mqtt.PublishThermostatState(name, th); err != nil {
			logging.Warn("publish failed", zap.String("device", name), zap.Error(err))
		}
	}
}

// handleCommand runs on the MQTT client's goroutine.
func (b *bridge) handleCommand(name, action string, payload []byte) {
	var err error
	switch {
	case b.dimmers[name] != nil:
		err = b.dimmerCommand(b.dimmers[name], action, payload)
	case b.thermostats[name] != nil:
		err = b.thermostatCommand(b.thermostats[name], action, payload)
	default:
		logging.Warn("command for unknown device", zap.String("device", name))
		return
	}
	if err != nil {
		logging.Warn("command failed",
			zap.String("device", name),
			zap.String("action", action),
			zap.Error(err))
		return
	}
	// Re-publish so subscribers see the effect without waiting for the
	// next poll.
	b.publishOne(name)
}

func (b *bridge) dimmerCommand(d *device.Dimmer, action string, payload []byte) error {
	b.plmMu.Lock()
	defer b.plmMu.Unlock()
	switch action {
	case "on":
		level := 100
		if s := strings.TrimSpace(string(payload)); s != "" {
			var err error
			if level, err = strconv.Atoi(s); err != nil || level < 0 || level > 100 {
				return fmt.Errorf("bad level payload %q: want 0..100", s)
			}
		}
		return d.SetOn(level)
	case "off":
		return d.SetOff()
	default:
		return fmt.Errorf("unknown dimmer action %q", action)
	}
}

func (b *bridge) thermostatCommand(th *device.Thermostat, action string, payload []byte) error {
	b.plmMu.Lock()
	defer b.plmMu.Unlock()
	switch action {
	case "mode":
		code, err := strconv.Atoi(strings.TrimSpace(string(payload)))
		if err != nil {
			return fmt.Errorf("bad mode payload %q", payload)
		}
		return th.SetMode(device.ModeCommand(code))
	case "up":
		return th.UpSetPoint()
	case "down":
		return th.DownSetPoint()
	default:
		return fmt.Errorf("unknown thermostat action %q", action)
	}
}

func (b *bridge) publishOne(name string) {
	var err error
	switch {
	case b.dimmers[name] != nil:
		b.plmMu.Lock()
		pollErr := b.dimmers[name].GetState()
		b.plmMu.Unlock()
		if pollErr != nil {
			logging.Warn("dimmer poll failed", zap.String("device", name), zap.Error(pollErr))
		}
		err = b.mqtt.PublishDimmerState(name, b.dimmers[name])
	case b.thermostats[name] != nil:
		b.plmMu.Lock()
		pollErr := b.thermostats[name].GetState()
		b.plmMu.Unlock()
		if pollErr != nil {
			logging.Warn("thermostat poll failed", zap.String("device", name), zap.Error(pollErr))
		}
		err = b.mqtt.PublishThermostatState(name, b.thermostats[name])
	}
	if err != nil {
		logging.Warn("publish failed", zap.String("device", name), zap.Error(err))
	}
}
