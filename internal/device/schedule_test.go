package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dverge/insteonplm/internal/protocol"
	"github.com/dverge/insteonplm/internal/transport"
)

var weekdayEntry = ScheduleEntry{
	Wake:   Period{Time: TimeOfDay{6, 30}, Cool: 24, Heat: 18},
	Leave:  Period{Time: TimeOfDay{8, 0}, Cool: 26, Heat: 16},
	Return: Period{Time: TimeOfDay{17, 30}, Cool: 25, Heat: 19},
	Sleep:  Period{Time: TimeOfDay{22, 0}, Cool: 26, Heat: 17},
}

func TestScheduleDayRoundTrip(t *testing.T) {
	data := encodeScheduleDay(weekdayEntry)
	assert.Equal(t, [12]byte{26, 24, 18, 32, 26, 16, 70, 25, 19, 88, 26, 17}, data)

	// Reassemble the extended response a day query would produce.
	cmd2 := byte(scheduleReadCmd2Base)
	ext := extAck(func(seg []byte) {
		seg[10] = cmd2 + 1
		copy(seg[11:23], data[:])
	})

	got, err := decodeScheduleDay(ext, cmd2)
	require.NoError(t, err)
	assert.Equal(t, weekdayEntry, got)
	assert.Equal(t, "06:30", got.Wake.Time.String())
}

func TestDecodeScheduleDayRejectsBadCommandEcho(t *testing.T) {
	ext := extAck(func(seg []byte) {
		seg[10] = 0x0c // echo for a different day
	})
	_, err := decodeScheduleDay(ext, scheduleReadCmd2Base)
	require.Error(t, err)
}

func TestDecodeScheduleDayRejectsBadTimeByte(t *testing.T) {
	ext := extAck(func(seg []byte) {
		seg[10] = scheduleReadCmd2Base + 1
		seg[11] = 96 // one quarter-hour past the end of the day
	})
	_, err := decodeScheduleDay(ext, scheduleReadCmd2Base)
	require.Error(t, err)

	// Setpoint bytes are deliberately not range-checked.
	ext = extAck(func(seg []byte) {
		seg[10] = scheduleReadCmd2Base + 1
		seg[12] = 0xff
		seg[13] = 0xff
	})
	got, err := decodeScheduleDay(ext, scheduleReadCmd2Base)
	require.NoError(t, err)
	assert.Equal(t, 255, got.Wake.Cool)
	assert.Equal(t, 255, got.Wake.Heat)
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "06:30", want: TimeOfDay{6, 30}},
		{in: "6:30:00", want: TimeOfDay{6, 30}},
		{in: "22:00", want: TimeOfDay{22, 0}},
		{in: "24:00", wantErr: true},
		{in: "10:61", wantErr: true},
		{in: "1030", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseTimeOfDay(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseTimeOfDay(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func scriptScheduleDay(port *scriptPort, day int, entry ScheduleEntry) {
	cmd2 := byte(scheduleReadCmd2Base + 2*day)
	frame := protocol.BuildExtCrcCommand(thermoAddr, cmdExtendedGetSet, cmd2, [12]byte{})
	data := encodeScheduleDay(entry)
	port.script(
		echoFor(frame),
		stdAck(cmdExtendedGetSet, cmd2, 0),
		extAck(func(seg []byte) {
			seg[10] = cmd2 + 1
			copy(seg[11:23], data[:])
		}),
	)
}

func TestThermostatGetSchedule(t *testing.T) {
	port := &scriptPort{}
	for day := 0; day < 7; day++ {
		scriptScheduleDay(port, day, weekdayEntry)
	}

	th := newTestThermostat(port)
	require.NoError(t, th.GetSchedule(8, 0))

	require.NotNil(t, th.Schedule)
	assert.Equal(t, 8, th.Schedule.DeviceID)
	assert.Equal(t, 0, th.Schedule.Zone)
	for day := 0; day < 7; day++ {
		assert.Equal(t, weekdayEntry, th.Schedule.Days[day], "day %d", day)
	}
	assert.False(t, th.ErrorStatus)
}

func TestThermostatGetScheduleBadDayKeepsStored(t *testing.T) {
	port := &scriptPort{}
	for day := 0; day < 7; day++ {
		if day == 3 {
			// Day 3 comes back with an impossible wake time.
			cmd2 := byte(scheduleReadCmd2Base + 2*day)
			frame := protocol.BuildExtCrcCommand(thermoAddr, cmdExtendedGetSet, cmd2, [12]byte{})
			port.script(
				echoFor(frame),
				stdAck(cmdExtendedGetSet, cmd2, 0),
				extAck(func(seg []byte) {
					seg[10] = cmd2 + 1
					seg[11] = 200
				}),
			)
			continue
		}
		scriptScheduleDay(port, day, weekdayEntry)
	}

	th := newTestThermostat(port)
	prior := &Schedule{DeviceID: 8}
	th.Schedule = prior

	err := th.GetSchedule(8, 0)
	require.Error(t, err)
	assert.Same(t, prior, th.Schedule, "partial fetch must not replace the stored table")
	assert.True(t, th.ErrorStatus)
	assert.Equal(t, 7*3, port.readCalls, "remaining days are still fetched after a bad one")
}

func TestThermostatSetSchedule(t *testing.T) {
	port := &scriptPort{}
	days := make([]ScheduleEntry, 7)
	for day := range days {
		days[day] = weekdayEntry
		cmd2 := byte(scheduleWriteCmd2Base + day)
		frame := protocol.BuildExtCrcCommand(thermoAddr, cmdExtendedGetSet, cmd2, encodeScheduleDay(weekdayEntry))
		port.script(echoFor(frame), stdAck(cmdExtendedGetSet, cmd2, 0))
	}

	th := newTestThermostat(port)
	require.NoError(t, th.SetSchedule(days))

	require.Len(t, port.written, 7)
	// Spot-check the day 0 frame: command pair, packed wake period, CRC.
	frame := port.written[0]
	assert.Equal(t, byte(cmdExtendedGetSet), frame[6])
	assert.Equal(t, byte(scheduleWriteCmd2Base), frame[7])
	assert.Equal(t, []byte{26, 24, 18}, frame[8:11])
	assert.Equal(t, []byte{0x8b, 0xce}, frame[20:22], "golden CRC trailer")

	require.NotNil(t, th.Schedule)
	assert.Equal(t, weekdayEntry, th.Schedule.Days[6])
}

func TestThermostatSetScheduleRowCountValidation(t *testing.T) {
	port := &scriptPort{}
	th := newTestThermostat(port)

	err := th.SetSchedule(make([]ScheduleEntry, 5))
	require.ErrorIs(t, err, transport.ErrValidation)
	assert.Empty(t, port.written, "row-count rejection must not touch the channel")
	assert.Zero(t, port.readCalls)
}

func TestThermostatSetScheduleFailureKeepsStored(t *testing.T) {
	port := &scriptPort{}
	days := make([]ScheduleEntry, 7)
	for day := range days {
		days[day] = weekdayEntry
		if day == 2 {
			port.script([]byte{0x02}) // write echo times out short
			continue
		}
		cmd2 := byte(scheduleWriteCmd2Base + day)
		frame := protocol.BuildExtCrcCommand(thermoAddr, cmdExtendedGetSet, cmd2, encodeScheduleDay(weekdayEntry))
		port.script(echoFor(frame), stdAck(cmdExtendedGetSet, cmd2, 0))
	}

	th := newTestThermostat(port)
	err := th.SetSchedule(days)
	require.Error(t, err)
	assert.Nil(t, th.Schedule, "failed write must not record the table")
	assert.True(t, th.ErrorStatus)
	require.Len(t, port.written, 7, "remaining days are still written after a failure")
}

func TestScheduleRowID(t *testing.T) {
	s := &Schedule{Zone: 0}
	assert.Equal(t, 43, s.RowID(0))
	assert.Equal(t, 49, s.RowID(6))

	s.Zone = 1
	assert.Equal(t, 92, s.RowID(0))
}
