package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dverge/insteonplm/internal/config"
	"github.com/dverge/insteonplm/internal/device"
	"github.com/dverge/insteonplm/internal/serialport"
	"github.com/dverge/insteonplm/internal/transport"
)

var (
	configPath string
	logLevel   string
)

// plm bundles everything a device command needs: the open port, the
// session on it, and the config that names the devices.
type plm struct {
	cfg     *config.Config
	port    *serialport.Port
	session *transport.Session
	tracker *device.StatusTracker
}

func openPLM() (*plm, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	port, err := serialport.Open(serialport.Config{
		Device:       cfg.Serial.Device,
		BaudRate:     cfg.Serial.BaudRate,
		ReadTimeout:  cfg.Serial.ReadTimeout(),
		OpenAttempts: 1, // CLI commands fail fast; the bridge retries
	})
	if err != nil {
		return nil, err
	}
	return &plm{
		cfg:     cfg,
		port:    port,
		session: transport.NewSession(port),
		tracker: device.NewStatusTracker(nil),
	}, nil
}

func (p *plm) close() {
	p.port.Close()
}

func (p *plm) dimmer(name string) (*device.Dimmer, error) {
	dev, ok := p.cfg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no device named %q in config", name)
	}
	if dev.Type != config.TypeDimmer {
		return nil, fmt.Errorf("device %q is a %s, not a dimmer", name, dev.Type)
	}
	addr, err := dev.ParseAddress()
	if err != nil {
		return nil, err
	}
	return device.NewDimmer(addr, p.session, p.tracker), nil
}

func (p *plm) thermostat(name string) (*device.Thermostat, error) {
	dev, ok := p.cfg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no device named %q in config", name)
	}
	if dev.Type != config.TypeThermostat {
		return nil, fmt.Errorf("device %q is a %s, not a thermostat", name, dev.Type)
	}
	addr, err := dev.ParseAddress()
	if err != nil {
		return nil, err
	}
	return device.NewThermostat(addr, p.session, p.tracker), nil
}

// dimmer commands

var dimmerCmd = &cobra.Command{
	Use:   "dimmer",
	Short: "Control dimmers",
}

func init() {
	dimmerCmd.AddCommand(&cobra.Command{
		Use:   "on <name> [level]",
		Short: "Turn a dimmer on, optionally at a level in percent",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := 100
			if len(args) == 2 {
				var err error
				if level, err = strconv.Atoi(args[1]); err != nil || level < 0 || level > 100 {
					return fmt.Errorf("level must be 0..100, got %q", args[1])
				}
			}
			return withDimmer(args[0], func(d *device.Dimmer) error {
				return d.SetOn(level)
			})
		},
	})
	dimmerCmd.AddCommand(&cobra.Command{
		Use:   "off <name>",
		Short: "Turn a dimmer off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDimmer(args[0], func(d *device.Dimmer) error {
				return d.SetOff()
			})
		},
	})
	dimmerCmd.AddCommand(&cobra.Command{
		Use:   "state <name>",
		Short: "Read a dimmer's current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDimmer(args[0], func(d *device.Dimmer) error {
				if err := d.GetState(); err != nil {
					return err
				}
				fmt.Printf("%s: on=%v level=%d%%", args[0], d.LastGetOn, d.LastGetLevel)
				if d.ManualOverride {
					fmt.Print(" (manual override)")
				}
				fmt.Println()
				return nil
			})
		},
	})
}

func withDimmer(name string, fn func(*device.Dimmer) error) error {
	p, err := openPLM()
	if err != nil {
		return err
	}
	defer p.close()
	d, err := p.dimmer(name)
	if err != nil {
		return err
	}
	return fn(d)
}

// thermostat commands

var thermostatCmd = &cobra.Command{
	Use:     "thermostat",
	Aliases: []string{"thermo"},
	Short:   "Control thermostats",
}

func init() {
	thermostatCmd.AddCommand(&cobra.Command{
		Use:   "state <name>",
		Short: "Read a thermostat's mode, setpoints, temperature and humidity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withThermostat(args[0], func(th *device.Thermostat) error {
				if err := th.GetState(); err != nil {
					return err
				}
				fmt.Printf("%s: mode=%s heat=%dC cool=%dC temp=%.1fC humidity=%.0f%%\n",
					args[0], th.Mode, th.TargetHeat, th.TargetCool, th.ActualTemp, th.ActualHumi)
				return nil
			})
		},
	})
	thermostatCmd.AddCommand(&cobra.Command{
		Use:   "mode <name> <code>",
		Short: "Set the operating mode (4=heat 5=cool 6=manual-auto 7=fan-on 8=fan-off 9=all-off 10=auto)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("mode code must be a number, got %q", args[1])
			}
			return withThermostat(args[0], func(th *device.Thermostat) error {
				return th.SetMode(device.ModeCommand(code))
			})
		},
	})
	thermostatCmd.AddCommand(&cobra.Command{
		Use:   "up <name>",
		Short: "Nudge the setpoint up one step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withThermostat(args[0], (*device.Thermostat).UpSetPoint)
		},
	})
	thermostatCmd.AddCommand(&cobra.Command{
		Use:   "down <name>",
		Short: "Nudge the setpoint down one step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withThermostat(args[0], (*device.Thermostat).DownSetPoint)
		},
	})
	thermostatCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Read or write the weekly schedule table",
}

func init() {
	scheduleCmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Fetch the 7-day schedule and print it as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withThermostat2(args[0], func(th *device.Thermostat, dev config.Device) error {
				if err := th.GetSchedule(dev.DeviceID, dev.Zone); err != nil {
					return err
				}
				// An unconfigured address makes GetSchedule a no-op.
				if th.Schedule == nil {
					fmt.Println("no schedule fetched")
					return nil
				}
				out, err := yaml.Marshal(scheduleToFile(th.Schedule))
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			})
		},
	})
	scheduleCmd.AddCommand(&cobra.Command{
		Use:   "set <name> <file>",
		Short: "Write a 7-day schedule from a YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := loadScheduleFile(args[1])
			if err != nil {
				return err
			}
			return withThermostat(args[0], func(th *device.Thermostat) error {
				return th.SetSchedule(days)
			})
		},
	})
}

func withThermostat(name string, fn func(*device.Thermostat) error) error {
	return withThermostat2(name, func(th *device.Thermostat, _ config.Device) error {
		return fn(th)
	})
}

func withThermostat2(name string, fn func(*device.Thermostat, config.Device) error) error {
	p, err := openPLM()
	if err != nil {
		return err
	}
	defer p.close()
	th, err := p.thermostat(name)
	if err != nil {
		return err
	}
	dev, _ := p.cfg.Lookup(name)
	return fn(th, dev)
}

// status walks every configured device and prints what it finds. A
// failing device is reported and the walk continues.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Poll every configured device and print its state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPLM()
		if err != nil {
			return err
		}
		defer p.close()

		for _, name := range p.cfg.DevicesOfType(config.TypeDimmer) {
			d, err := p.dimmer(name)
			if err == nil {
				err = d.GetState()
			}
			if err != nil {
				fmt.Printf("%s: error: %v\n", name, err)
				continue
			}
			fmt.Printf("%s: on=%v level=%d%%\n", name, d.LastGetOn, d.LastGetLevel)
		}
		for _, name := range p.cfg.DevicesOfType(config.TypeThermostat) {
			th, err := p.thermostat(name)
			if err == nil {
				err = th.GetState()
			}
			if err != nil {
				fmt.Printf("%s: error: %v\n", name, err)
				continue
			}
			fmt.Printf("%s: mode=%s heat=%dC cool=%dC temp=%.1fC humidity=%.0f%%\n",
				name, th.Mode, th.TargetHeat, th.TargetCool, th.ActualTemp, th.ActualHumi)
		}
		return nil
	},
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists", configPath)
			}
			cfg := config.DefaultConfig()
			cfg.Devices["hallway"] = config.Device{Address: "00.00.00", Type: config.TypeDimmer}
			cfg.Devices["upstairs"] = config.Device{Address: "00.00.00", Type: config.TypeThermostat, DeviceID: 8}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(configPath, out, 0o600); err != nil {
				return err
			}
			fmt.Printf("Wrote %s; fill in your device addresses.\n", configPath)
			return nil
		},
	})
}
