package device

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/dverge/insteonplm/internal/logging"
	"github.com/dverge/insteonplm/internal/protocol"
	"github.com/dverge/insteonplm/internal/transport"
)

// Thermostat command codes.
const (
	// cmdThermostatControl carries mode operations: cmd2 0x02 reads the
	// mode as a standard command; as an extended checksum command, cmd2 is
	// the set-mode code.
	cmdThermostatControl = 0x6b

	// cmdZoneInfo reads per-zone values; cmd2 selects the value.
	cmdZoneInfo       = 0x6a
	zoneInfoSetpoints = 0x20 // two chained responses: heat, then cool
	zoneInfoHumidity  = 0x60

	// cmdExtendedGetSet addresses the extended data sets: dataset 1
	// (ambient temperature) and the schedule table.
	cmdExtendedGetSet = 0x2e

	// cmdSetPointUp / cmdSetPointDown are the faceplate nudge buttons.
	cmdSetPointUp   = 0x15
	cmdSetPointDown = 0x16

	// scheduleReadCmd2Base / scheduleWriteCmd2Base derive the cmd2 byte
	// from the day index for schedule queries and writes.
	scheduleReadCmd2Base  = 0x0a
	scheduleWriteCmd2Base = 0x03
)

// Device-imposed settle delays: the thermostat needs idle time after state
// changes before it will answer the next exchange.
const (
	nudgeSettleDelay = 1500 * time.Millisecond
	writeSettleDelay = 4 * time.Second
)

// Mode is the thermostat operating mode as reported by the device.
type Mode int

// Reported modes. ModeUnknown is the 8-sentinel the device never reports
// itself; it is the zero state before the first successful read.
const (
	ModeOff Mode = iota
	ModeHeat
	ModeCool
	ModeAuto
	ModeFan
	ModeProgram
	ModeProgramHeat
	ModeProgramCool
	ModeUnknown
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeHeat:
		return "heat"
	case ModeCool:
		return "cool"
	case ModeAuto:
		return "auto"
	case ModeFan:
		return "fan"
	case ModeProgram:
		return "program"
	case ModeProgramHeat:
		return "program heat"
	case ModeProgramCool:
		return "program cool"
	default:
		return "unknown"
	}
}

// parseMode decodes a reported mode byte. Bytes past the sentinel are
// garbage and rejected.
func parseMode(b byte) (Mode, bool) {
	if b > byte(ModeUnknown) {
		return ModeUnknown, false
	}
	return Mode(b), true
}

// ModeCommand is a set-mode code. The set enumeration (4..10) does not
// line up with the reported Mode values and the two are deliberately kept
// distinct.
type ModeCommand byte

const (
	ModeCmdOnHeat     ModeCommand = 4
	ModeCmdOnCool     ModeCommand = 5
	ModeCmdManualAuto ModeCommand = 6
	ModeCmdOnFan      ModeCommand = 7
	ModeCmdOffFan     ModeCommand = 8
	ModeCmdOffAll     ModeCommand = 9
	ModeCmdAuto       ModeCommand = 10
)

// Thermostat controls one Insteon thermostat through the PLM. The
// exported fields are the device's tracked state, owned exclusively by
// this instance.
type Thermostat struct {
	addr    protocol.Address
	session *transport.Session
	tracker *StatusTracker

	// settle delays; overridable so tests run instantly.
	nudgeSettle time.Duration
	writeSettle time.Duration

	Mode        Mode
	TargetHeat  int
	TargetCool  int
	ActualTemp  float64
	ActualHumi  float64
	Schedule    *Schedule
	ErrorStatus bool
}

// NewThermostat creates a controller for the thermostat at addr,
// exchanging through session. A nil tracker gets a default one.
func NewThermostat(addr protocol.Address, session *transport.Session, tracker *StatusTracker) *Thermostat {
	if tracker == nil {
		tracker = NewStatusTracker(nil)
	}
	return &Thermostat{
		addr:        addr,
		session:     session,
		tracker:     tracker,
		nudgeSettle: nudgeSettleDelay,
		writeSettle: writeSettleDelay,
		Mode:        ModeUnknown,
	}
}

// Address returns the device address.
func (t *Thermostat) Address() protocol.Address { return t.addr }

// GetState refreshes mode, setpoints, humidity and ambient temperature in
// four independent exchanges. A failed step leaves its fields unchanged
// and the remaining steps still run; the aggregate outcome feeds the
// error status once at the end.
func (t *Thermostat) GetState() error {
	if t.skipUnconfigured("get state") {
		return nil
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"mode", t.readMode},
		{"setpoints", t.readSetpoints},
		{"humidity", t.readHumidity},
		{"temperature", t.readTemperature},
	}

	var failedSteps []string
	for _, step := range steps {
		if err := step.run(); err != nil {
			logging.Debug("thermostat state step failed",
				zap.Stringer("address", t.addr),
				zap.String("step", step.name),
				zap.Error(err))
			failedSteps = append(failedSteps, step.name)
		}
	}

	failed := len(failedSteps) > 0
	t.ErrorStatus = t.tracker.Report(t.addr, "get state", failed, t.ErrorStatus)
	if failed {
		return fmt.Errorf("thermostat %s: get state: %d of %d steps failed (%v)",
			t.addr, len(failedSteps), len(steps), failedSteps)
	}
	return nil
}

func (t *Thermostat) readMode() error {
	ack, err := t.session.ExchangeStd(protocol.BuildStdCommand(t.addr, cmdThermostatControl, 0x02), 1)
	if err != nil {
		return err
	}
	mode, ok := parseMode(ack[protocol.StdAckLen-1])
	if !ok {
		return fmt.Errorf("invalid mode byte 0x%02x", ack[protocol.StdAckLen-1])
	}
	t.Mode = mode
	return nil
}

func (t *Thermostat) readSetpoints() error {
	ack, err := t.session.ExchangeStd(protocol.BuildStdCommand(t.addr, cmdZoneInfo, zoneInfoSetpoints), 2)
	if err != nil {
		return err
	}
	// Two chained segments: heat setpoint first, then cool, both in
	// half-degree units.
	t.TargetHeat = int(math.Round(float64(ack[protocol.StdAckLen-1]) / 2.0))
	t.TargetCool = int(math.Round(float64(ack[2*protocol.StdAckLen-1]) / 2.0))
	return nil
}

func (t *Thermostat) readHumidity() error {
	ack, err := t.session.ExchangeStd(protocol.BuildStdCommand(t.addr, cmdZoneInfo, zoneInfoHumidity), 1)
	if err != nil {
		return err
	}
	t.ActualHumi = float64(ack[protocol.StdAckLen-1])
	return nil
}

func (t *Thermostat) readTemperature() error {
	frame := protocol.BuildExtChecksumCommand(t.addr, cmdExtendedGetSet, 0x00, [13]byte{})
	ext, err := t.session.ExchangeExtChecksum(frame)
	if err != nil {
		return err
	}
	t.ActualTemp = (float64(ext[13])*256 + float64(ext[14])) / 10.0
	return nil
}

// UpSetPoint nudges the setpoint up one step, like pressing the up button
// on the faceplate, then waits for the device to settle.
func (t *Thermostat) UpSetPoint() error {
	return t.nudge(cmdSetPointUp, "up set point")
}

// DownSetPoint nudges the setpoint down one step, then waits for the
// device to settle.
func (t *Thermostat) DownSetPoint() error {
	return t.nudge(cmdSetPointDown, "down set point")
}

func (t *Thermostat) nudge(cmd1 byte, context string) error {
	if t.skipUnconfigured(context) {
		return nil
	}
	_, err := t.session.ExchangeStd(protocol.BuildStdCommand(t.addr, cmd1, 0x00), 1)
	time.Sleep(t.nudgeSettle)

	t.ErrorStatus = t.tracker.Report(t.addr, context, err != nil, t.ErrorStatus)
	if err != nil {
		return fmt.Errorf("thermostat %s: %s: %w", t.addr, context, err)
	}
	return nil
}

// GetSchedule fetches the full 7-day schedule table. A day whose response
// fails validation is excluded and marks the fetch failed; the stored
// schedule is replaced only when all seven days decode.
func (t *Thermostat) GetSchedule(deviceID, zone int) error {
	if t.skipUnconfigured("get schedule") {
		return nil
	}

	var days [7]ScheduleEntry
	failed := false
	for day := 0; day < 7; day++ {
		cmd2 := byte(scheduleReadCmd2Base + 2*day)
		frame := protocol.BuildExtCrcCommand(t.addr, cmdExtendedGetSet, cmd2, [12]byte{})
		ext, err := t.session.ExchangeExtCrc(frame, true)
		if err != nil {
			failed = true
			continue
		}
		entry, err := decodeScheduleDay(ext, cmd2)
		if err != nil {
			logging.Debug("schedule day rejected",
				zap.Stringer("address", t.addr),
				zap.Int("day", day),
				zap.Error(err))
			failed = true
			continue
		}
		days[day] = entry
	}

	t.ErrorStatus = t.tracker.Report(t.addr, "get schedule", failed, t.ErrorStatus)
	if failed {
		return fmt.Errorf("thermostat %s: get schedule: incomplete table", t.addr)
	}
	t.Schedule = &Schedule{DeviceID: deviceID, Zone: zone, Days: days}
	return nil
}

// SetSchedule writes a full 7-day table to the device, one extended write
// per day with a settle pause after each. The table must have exactly 7
// rows; anything else is rejected before any channel i/o. The stored
// schedule is updated only when all seven writes succeed.
func (t *Thermostat) SetSchedule(days []ScheduleEntry) error {
	if t.skipUnconfigured("set schedule") {
		return nil
	}
	if len(days) != 7 {
		return fmt.Errorf("%w: schedule table has %d rows, want 7", transport.ErrValidation, len(days))
	}

	failed := false
	for day, entry := range days {
		cmd2 := byte(scheduleWriteCmd2Base + day)
		frame := protocol.BuildExtCrcCommand(t.addr, cmdExtendedGetSet, cmd2, encodeScheduleDay(entry))
		// The device does not return a full extended ack for writes.
		if _, err := t.session.ExchangeExtCrc(frame, false); err != nil {
			failed = true
		}
		time.Sleep(t.writeSettle)
	}

	t.ErrorStatus = t.tracker.Report(t.addr, "set schedule", failed, t.ErrorStatus)
	if failed {
		return fmt.Errorf("thermostat %s: set schedule: not all days written", t.addr)
	}
	sched := &Schedule{Days: [7]ScheduleEntry(days)}
	if t.Schedule != nil {
		sched.DeviceID = t.Schedule.DeviceID
		sched.Zone = t.Schedule.Zone
	}
	t.Schedule = sched
	return nil
}

// SetMode commands an operating mode using the set-mode code enumeration
// (4..10). Out-of-range codes are rejected before any channel i/o.
func (t *Thermostat) SetMode(mode ModeCommand) error {
	if t.skipUnconfigured("set mode") {
		return nil
	}
	if mode < ModeCmdOnHeat || mode > ModeCmdAuto {
		return fmt.Errorf("%w: set-mode code %d out of range 4..10", transport.ErrValidation, mode)
	}

	frame := protocol.BuildExtChecksumCommand(t.addr, cmdThermostatControl, byte(mode), [13]byte{})
	_, err := t.session.ExchangeExtChecksum(frame)
	time.Sleep(t.nudgeSettle)

	t.ErrorStatus = t.tracker.Report(t.addr, "set mode", err != nil, t.ErrorStatus)
	if err != nil {
		return fmt.Errorf("thermostat %s: set mode %d: %w", t.addr, mode, err)
	}
	return nil
}

// SetSettleDelays overrides the device settle pauses. Zero values make
// operations return immediately; tests use this.
func (t *Thermostat) SetSettleDelays(nudge, write time.Duration) {
	t.nudgeSettle = nudge
	t.writeSettle = write
}

func (t *Thermostat) skipUnconfigured(context string) bool {
	if !t.addr.IsUnconfigured() {
		return false
	}
	logging.Warn("no action taken on unconfigured device",
		zap.String("context", context))
	return true
}
