package device

import (
	"fmt"
	"strconv"
	"strings"
)

// A thermostat stores one schedule row per weekday, each with four
// periods (wake, leave, return, sleep). Times have 15-minute resolution:
// the device packs a time as hour*4 + minute/15, so a day spans byte
// values 0..95.
const (
	quartersPerDay = 96

	// scheduleMode is the schedule-mode identity of the weekly 4-period
	// table, used only for row identification.
	scheduleMode = 7
)

// TimeOfDay is a schedule time with 15-minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM" (seconds, if present, are ignored).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: bad hour", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: bad minute", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Period is one schedule period: when it starts and the cool/heat
// setpoints that take effect, in whole degrees C as the device stores
// them.
type Period struct {
	Time TimeOfDay
	Cool int
	Heat int
}

// ScheduleEntry is one weekday's four periods.
type ScheduleEntry struct {
	Wake   Period
	Leave  Period
	Return Period
	Sleep  Period
}

// periods returns the entry's periods in wire order.
func (e *ScheduleEntry) periods() [4]*Period {
	return [4]*Period{&e.Wake, &e.Leave, &e.Return, &e.Sleep}
}

// Schedule is the full 7-day table fetched from or written to a
// thermostat. DeviceID and Zone identify where the table came from; they
// parameterize row identity only.
type Schedule struct {
	DeviceID int
	Zone     int
	Days     [7]ScheduleEntry
}

// RowID returns the stable row identity of one day's schedule entry,
// unique across zones and schedule modes.
func (s *Schedule) RowID(day int) int {
	return day + 1 + (scheduleMode-1)*7 + 49*s.Zone
}

// encodeScheduleDay packs one day's periods into the 12-byte extended
// command payload: time, cool, heat per period.
func encodeScheduleDay(entry ScheduleEntry) [12]byte {
	var data [12]byte
	for i, p := range entry.periods() {
		data[i*3] = byte(p.Time.Hour*4 + p.Time.Minute/15)
		data[i*3+1] = byte(p.Cool)
		data[i*3+2] = byte(p.Heat)
	}
	return data
}

// decodeScheduleDay unpacks one day's schedule from a 25-byte extended
// response to the day query that sent cmd2. The response must echo
// cmd2+1 at offset 10, and each period's time byte must fall inside the
// day; setpoint bytes are accepted as-is.
func decodeScheduleDay(ext []byte, cmd2 byte) (ScheduleEntry, error) {
	var entry ScheduleEntry
	if ext[10] != cmd2+1 {
		return entry, fmt.Errorf("schedule response echoes command 0x%02x, want 0x%02x", ext[10], cmd2+1)
	}
	for i, p := range entry.periods() {
		raw := ext[11+i*3]
		if raw >= quartersPerDay {
			return ScheduleEntry{}, fmt.Errorf("schedule period %d time byte %d out of range", i, raw)
		}
		p.Time = TimeOfDay{Hour: int(raw) / 4, Minute: int(raw) % 4 * 15}
		p.Cool = int(ext[12+i*3])
		p.Heat = int(ext[13+i*3])
	}
	return entry, nil
}
