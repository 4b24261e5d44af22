// Plmctl drives Insteon dimmers and thermostats through a power-line
// modem (PLM) attached to a serial port.
//
// It provides direct device commands (on/off/state for dimmers, state,
// mode, setpoints and weekly schedules for thermostats) and an MQTT
// bridge that polls device state onto a broker and accepts commands from
// it.
//
// Usage:
//
//	plmctl [command] [flags]
//
// Devices are named in a YAML config file; see 'plmctl --help' for the
// available commands and 'plmctl config init' for a starter config.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dverge/insteonplm/internal/logging"
	"github.com/dverge/insteonplm/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "plmctl",
	Short: "Insteon PLM device control",
	Long: `Control Insteon dimmers and thermostats through a serial power-line modem.

Devices are addressed by the friendly names assigned in the config file.
Run 'plmctl config init' to write a starter config.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "plmctl.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); default silent")

	rootCmd.AddCommand(dimmerCmd)
	rootCmd.AddCommand(thermostatCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plmctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
