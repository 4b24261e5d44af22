package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dverge/insteonplm/internal/device"
	"github.com/dverge/insteonplm/internal/protocol"
)

// Commands arriving over MQTT validate their payloads the same way the
// CLI does; an out-of-range level is an error, not a silent clamp.
func TestDimmerCommandLevelValidation(t *testing.T) {
	b := &bridge{}
	// Unconfigured address: accepted commands become no-ops, so only
	// payload validation is exercised here.
	d := device.NewDimmer(protocol.Unconfigured, nil, device.NewStatusTracker(nil))

	tests := []struct {
		action  string
		payload string
		wantErr bool
	}{
		{"on", "", false},
		{"on", "50", false},
		{"on", "0", false},
		{"on", "100", false},
		{"on", "150", true},
		{"on", "-5", true},
		{"on", "bright", true},
		{"off", "", false},
		{"dim", "", true},
	}
	for _, tt := range tests {
		err := b.dimmerCommand(d, tt.action, []byte(tt.payload))
		if tt.wantErr {
			assert.Error(t, err, "%s %q", tt.action, tt.payload)
		} else {
			assert.NoError(t, err, "%s %q", tt.action, tt.payload)
		}
	}
}

func TestThermostatCommandValidation(t *testing.T) {
	b := &bridge{}
	th := device.NewThermostat(protocol.Unconfigured, nil, device.NewStatusTracker(nil))

	require.NoError(t, b.thermostatCommand(th, "mode", []byte("6")))
	require.NoError(t, b.thermostatCommand(th, "up", nil))
	require.NoError(t, b.thermostatCommand(th, "down", nil))
	require.Error(t, b.thermostatCommand(th, "mode", []byte("warm")))
	require.Error(t, b.thermostatCommand(th, "swing", nil))
}
