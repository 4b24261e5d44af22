package device

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/dverge/insteonplm/internal/logging"
	"github.com/dverge/insteonplm/internal/protocol"
	"github.com/dverge/insteonplm/internal/transport"
)

// Standard command-1 codes for dimmable lighting devices.
const (
	cmdLightOn       = 0x11
	cmdLightOff      = 0x13
	cmdStatusRequest = 0x19
)

// manualOverrideSlop is the allowed gap, in percentage points, between the
// last commanded level and the level read back before the difference is
// attributed to someone touching the device.
const manualOverrideSlop = 2

// Dimmer controls one Insteon dimmer through the PLM. The exported fields
// are the device's tracked state; they are updated by the Set/Get methods
// and owned exclusively by this instance.
type Dimmer struct {
	addr    protocol.Address
	session *transport.Session
	tracker *StatusTracker

	LastSetOn      bool
	LastSetLevel   int
	LastGetOn      bool
	LastGetLevel   int
	ManualOverride bool
	ErrorStatus    bool
}

// NewDimmer creates a controller for the dimmer at addr, exchanging
// through session. A nil tracker gets a default one.
func NewDimmer(addr protocol.Address, session *transport.Session, tracker *StatusTracker) *Dimmer {
	if tracker == nil {
		tracker = NewStatusTracker(nil)
	}
	return &Dimmer{addr: addr, session: session, tracker: tracker}
}

// Address returns the device address.
func (d *Dimmer) Address() protocol.Address { return d.addr }

// SetOn turns the dimmer on at the given level in percent (0..100).
func (d *Dimmer) SetOn(level int) error {
	if d.skipUnconfigured("set on") {
		return nil
	}
	frame := protocol.BuildStdCommand(d.addr, cmdLightOn, levelToByte(level))
	_, err := d.session.ExchangeStd(frame, 1)

	d.ErrorStatus = d.tracker.Report(d.addr, fmt.Sprintf("set on, level %d", level), err != nil, d.ErrorStatus)
	if err != nil {
		return fmt.Errorf("dimmer %s: set on: %w", d.addr, err)
	}
	d.LastSetOn = true
	d.LastSetLevel = level
	d.ManualOverride = false
	return nil
}

// SetOff turns the dimmer off.
func (d *Dimmer) SetOff() error {
	if d.skipUnconfigured("set off") {
		return nil
	}
	frame := protocol.BuildStdCommand(d.addr, cmdLightOff, 0x00)
	_, err := d.session.ExchangeStd(frame, 1)

	d.ErrorStatus = d.tracker.Report(d.addr, "set off", err != nil, d.ErrorStatus)
	if err != nil {
		return fmt.Errorf("dimmer %s: set off: %w", d.addr, err)
	}
	d.LastSetOn = false
	d.LastSetLevel = 0
	d.ManualOverride = false
	return nil
}

// GetState reads the dimmer's current level, updates LastGetOn and
// LastGetLevel and recomputes ManualOverride against the last commanded
// state. On failure all state except ErrorStatus is left unchanged.
func (d *Dimmer) GetState() error {
	if d.skipUnconfigured("get state") {
		return nil
	}
	frame := protocol.BuildStdCommand(d.addr, cmdStatusRequest, 0x00)
	ack, err := d.session.ExchangeStd(frame, 1)

	d.ErrorStatus = d.tracker.Report(d.addr, "get state", err != nil, d.ErrorStatus)
	if err != nil {
		return fmt.Errorf("dimmer %s: get state: %w", d.addr, err)
	}

	raw := ack[protocol.StdAckLen-1]
	d.LastGetOn = raw != 0
	d.LastGetLevel = byteToLevel(raw)
	d.ManualOverride = d.LastGetOn != d.LastSetOn ||
		abs(d.LastGetLevel-d.LastSetLevel) > manualOverrideSlop
	return nil
}

func (d *Dimmer) skipUnconfigured(context string) bool {
	if !d.addr.IsUnconfigured() {
		return false
	}
	logging.Warn("no action taken on unconfigured device",
		zap.String("context", context))
	return true
}

// levelToByte converts a percentage to the device's 0..255 level byte.
func levelToByte(level int) byte {
	v := int(math.Round(float64(level) * 2.55))
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(v)
}

// byteToLevel converts a 0..255 level byte back to a percentage.
func byteToLevel(b byte) int {
	return int(math.Round(float64(b) / 2.55))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
