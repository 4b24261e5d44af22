package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dverge/insteonplm/internal/device"
	"github.com/dverge/insteonplm/internal/protocol"
)

// A thermostat at the unconfigured address never fetches a schedule, so
// the get path must cope with a nil table instead of dereferencing it.
func TestScheduleGetUnconfiguredAddress(t *testing.T) {
	th := device.NewThermostat(protocol.Unconfigured, nil, device.NewStatusTracker(nil))

	require.NoError(t, th.GetSchedule(8, 0))
	require.Nil(t, th.Schedule)

	f := scheduleToFile(th.Schedule)
	assert.Empty(t, f.Days)
}

const sampleScheduleYAML = `
days:
  - wake:   {time: "06:30", cool: 24, heat: 18}
    leave:  {time: "08:00", cool: 26, heat: 16}
    return: {time: "17:30", cool: 25, heat: 19}
    sleep:  {time: "22:00", cool: 26, heat: 17}
  - wake:   {time: "06:30", cool: 24, heat: 18}
    leave:  {time: "08:00", cool: 26, heat: 16}
    return: {time: "17:30", cool: 25, heat: 19}
    sleep:  {time: "22:00", cool: 26, heat: 17}
  - wake:   {time: "06:30", cool: 24, heat: 18}
    leave:  {time: "08:00", cool: 26, heat: 16}
    return: {time: "17:30", cool: 25, heat: 19}
    sleep:  {time: "22:00", cool: 26, heat: 17}
  - wake:   {time: "06:30", cool: 24, heat: 18}
    leave:  {time: "08:00", cool: 26, heat: 16}
    return: {time: "17:30", cool: 25, heat: 19}
    sleep:  {time: "22:00", cool: 26, heat: 17}
  - wake:   {time: "06:30", cool: 24, heat: 18}
    leave:  {time: "08:00", cool: 26, heat: 16}
    return: {time: "17:30", cool: 25, heat: 19}
    sleep:  {time: "22:00", cool: 26, heat: 17}
  - wake:   {time: "08:00", cool: 24, heat: 18}
    leave:  {time: "12:00", cool: 26, heat: 16}
    return: {time: "17:30", cool: 25, heat: 19}
    sleep:  {time: "23:00", cool: 26, heat: 17}
  - wake:   {time: "08:00", cool: 24, heat: 18}
    leave:  {time: "12:00", cool: 26, heat: 16}
    return: {time: "17:30", cool: 25, heat: 19}
    sleep:  {time: "23:00", cool: 26, heat: 17}
`

func writeScheduleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadScheduleFile(t *testing.T) {
	days, err := loadScheduleFile(writeScheduleFile(t, sampleScheduleYAML))
	require.NoError(t, err)
	require.Len(t, days, 7)

	assert.Equal(t, device.TimeOfDay{Hour: 6, Minute: 30}, days[0].Wake.Time)
	assert.Equal(t, 24, days[0].Wake.Cool)
	assert.Equal(t, 18, days[0].Wake.Heat)
	assert.Equal(t, device.TimeOfDay{Hour: 23, Minute: 0}, days[6].Sleep.Time)
}

func TestLoadScheduleFileRejectsShortTable(t *testing.T) {
	_, err := loadScheduleFile(writeScheduleFile(t, `
days:
  - wake:   {time: "06:30", cool: 24, heat: 18}
    leave:  {time: "08:00", cool: 26, heat: 16}
    return: {time: "17:30", cool: 25, heat: 19}
    sleep:  {time: "22:00", cool: 26, heat: 17}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 7 days")
}

func TestLoadScheduleFileRejectsBadTime(t *testing.T) {
	bad := strings.Replace(sampleScheduleYAML, `"06:30"`, `"noon"`, 1)
	_, err := loadScheduleFile(writeScheduleFile(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "day 1")
}
