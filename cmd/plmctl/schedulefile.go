package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dverge/insteonplm/internal/device"
)

// scheduleFile is the on-disk YAML shape for a weekly schedule. Days run
// Monday through Sunday, matching the device's table order.
type scheduleFile struct {
	Days []scheduleFileDay `yaml:"days"`
}

type scheduleFileDay struct {
	Wake   scheduleFilePeriod `yaml:"wake"`
	Leave  scheduleFilePeriod `yaml:"leave"`
	Return scheduleFilePeriod `yaml:"return"`
	Sleep  scheduleFilePeriod `yaml:"sleep"`
}

type scheduleFilePeriod struct {
	Time string `yaml:"time"`
	Cool int    `yaml:"cool"`
	Heat int    `yaml:"heat"`
}

func scheduleToFile(s *device.Schedule) scheduleFile {
	var f scheduleFile
	if s == nil {
		return f
	}
	for _, entry := range s.Days {
		f.Days = append(f.Days, scheduleFileDay{
			Wake:   periodToFile(entry.Wake),
			Leave:  periodToFile(entry.Leave),
			Return: periodToFile(entry.Return),
			Sleep:  periodToFile(entry.Sleep),
		})
	}
	return f
}

func periodToFile(p device.Period) scheduleFilePeriod {
	return scheduleFilePeriod{Time: p.Time.String(), Cool: p.Cool, Heat: p.Heat}
}

func loadScheduleFile(path string) ([]device.ScheduleEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f scheduleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(f.Days) != 7 {
		return nil, fmt.Errorf("%s: want 7 days, got %d", path, len(f.Days))
	}
	days := make([]device.ScheduleEntry, 0, 7)
	for i, d := range f.Days {
		entry, err := fileDayToEntry(d)
		if err != nil {
			return nil, fmt.Errorf("%s: day %d: %w", path, i+1, err)
		}
		days = append(days, entry)
	}
	return days, nil
}

func fileDayToEntry(d scheduleFileDay) (device.ScheduleEntry, error) {
	var entry device.ScheduleEntry
	for _, p := range []struct {
		name string
		src  scheduleFilePeriod
		dst  *device.Period
	}{
		{"wake", d.Wake, &entry.Wake},
		{"leave", d.Leave, &entry.Leave},
		{"return", d.Return, &entry.Return},
		{"sleep", d.Sleep, &entry.Sleep},
	} {
		tod, err := device.ParseTimeOfDay(p.src.Time)
		if err != nil {
			return device.ScheduleEntry{}, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = device.Period{Time: tod, Cool: p.src.Cool, Heat: p.src.Heat}
	}
	return entry, nil
}
