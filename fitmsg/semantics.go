package fitmsg

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/tormoder/fit"
)

type fieldSemantic struct {
	name   string
	units  string
	scaler func(decoded any) (any, bool)
}

// project maps a decoded base-type value to its semantic value. Values the
// scaler cannot handle are passed through unchanged.
func (s fieldSemantic) project(decoded any) any {
	if s.scaler == nil {
		return decoded
	}
	if v, ok := s.scaler(decoded); ok {
		return v
	}
	return decoded
}

var messageNames = map[uint16]string{
	0:   "file_id",
	12:  "sport",
	18:  "session",
	19:  "lap",
	20:  "record",
	21:  "event",
	23:  "device_info",
	34:  "activity",
	49:  "file_creator",
	55:  "monitoring",
	103: "monitoring_info",
	140: "physiological_metrics",
	211: "monitoring_hr_data",
}

var semanticsByMessage = map[uint16]map[uint8]fieldSemantic{
	0: { // file_id
		0: {name: "type", scaler: scaleFileType},
		1: {name: "manufacturer"},
		2: {name: "product"},
		3: {name: "serial_number"},
		4: {name: "time_created", units: "s", scaler: scaleTimestamp},
		5: {name: "number"},
		8: {name: "product_name"},
	},
	12: { // sport
		0: {name: "sport"},
		1: {name: "sub_sport"},
		3: {name: "name"},
	},
	18: { // session
		253: {name: "timestamp", units: "s", scaler: scaleTimestamp},
		2:   {name: "start_time", units: "s", scaler: scaleTimestamp},
		5:   {name: "sport"},
		6:   {name: "sub_sport"},
		7:   {name: "total_elapsed_time", units: "s", scaler: scaleBy(1000, 0)},
		8:   {name: "total_timer_time", units: "s", scaler: scaleBy(1000, 0)},
		9:   {name: "total_distance", units: "m", scaler: scaleBy(100, 0)},
		16:  {name: "avg_heart_rate", units: "bpm"},
		17:  {name: "max_heart_rate", units: "bpm"},
	},
	19: { // lap
		253: {name: "timestamp", units: "s", scaler: scaleTimestamp},
		2:   {name: "start_time", units: "s", scaler: scaleTimestamp},
		7:   {name: "total_elapsed_time", units: "s", scaler: scaleBy(1000, 0)},
		15:  {name: "avg_heart_rate", units: "bpm"},
		16:  {name: "max_heart_rate", units: "bpm"},
	},
	20: { // record
		253: {name: "timestamp", units: "s", scaler: scaleTimestamp},
		0:   {name: "position_lat", units: "semicircles"},
		1:   {name: "position_long", units: "semicircles"},
		2:   {name: "altitude", units: "m", scaler: scaleBy(5, 500)},
		3:   {name: "heart_rate", units: "bpm"},
		4:   {name: "cadence", units: "rpm"},
		5:   {name: "distance", units: "m", scaler: scaleBy(100, 0)},
		6:   {name: "speed", units: "m/s", scaler: scaleBy(1000, 0)},
		7:   {name: "power", units: "w"},
		13:  {name: "temperature", units: "c"},
		73:  {name: "enhanced_speed", units: "m/s", scaler: scaleBy(1000, 0)},
		78:  {name: "enhanced_altitude", units: "m", scaler: scaleBy(5, 500)},
	},
	21: { // event
		253: {name: "timestamp", units: "s", scaler: scaleTimestamp},
		0:   {name: "event"},
		1:   {name: "event_type"},
		3:   {name: "data"},
	},
	23: { // device_info
		253: {name: "timestamp", units: "s", scaler: scaleTimestamp},
		0:   {name: "device_index"},
		1:   {name: "device_type"},
		2:   {name: "manufacturer"},
		3:   {name: "serial_number"},
		4:   {name: "product"},
		5:   {name: "software_version", scaler: scaleBy(100, 0)},
		10:  {name: "battery_voltage", units: "v", scaler: scaleBy(256, 0)},
		27:  {name: "product_name"},
	},
	34: { // activity
		253: {name: "timestamp", units: "s", scaler: scaleTimestamp},
		0:   {name: "total_timer_time", units: "s", scaler: scaleBy(1000, 0)},
		1:   {name: "num_sessions"},
		2:   {name: "type"},
		5:   {name: "local_timestamp", units: "s", scaler: scaleTimestamp},
	},
	55: { // monitoring
		253: {name: "timestamp", units: "s", scaler: scaleTimestamp},
		0:   {name: "device_index"},
		1:   {name: "calories", units: "kcal"},
		2:   {name: "distance", units: "m", scaler: scaleBy(100, 0)},
		3:   {name: "cycles", units: "cycles", scaler: scaleBy(2, 0)},
		4:   {name: "active_time", units: "s", scaler: scaleBy(1000, 0)},
		5:   {name: "activity_type"},
		19:  {name: "active_calories", units: "kcal"},
		24:  {name: "current_activity_type_intensity"},
		26:  {name: "timestamp_16", units: "s"},
		27:  {name: "heart_rate", units: "bpm"},
	},
	103: { // monitoring_info
		253: {name: "timestamp", units: "s", scaler: scaleTimestamp},
		0:   {name: "local_timestamp", units: "s", scaler: scaleTimestamp},
		1:   {name: "activity_type"},
		3:   {name: "cycles_to_distance", units: "m/cycle", scaler: scaleBy(5000, 0)},
		4:   {name: "cycles_to_calories", units: "kcal/cycle", scaler: scaleBy(5000, 0)},
		5:   {name: "resting_metabolic_rate", units: "kcal/day"},
	},
}

func semanticForField(global uint16, field uint8) fieldSemantic {
	if m, ok := semanticsByMessage[global]; ok {
		if s, ok := m[field]; ok {
			return s
		}
	}
	if field == timestampFieldNum {
		return fieldSemantic{name: "timestamp", units: "s", scaler: scaleTimestamp}
	}
	return fieldSemantic{
		name: fmt.Sprintf("field_%d", field),
	}
}

func messageName(global uint16) string {
	if name, ok := messageNames[global]; ok {
		return name
	}
	name := fmt.Sprint(fit.MesgNum(global))
	if strings.HasPrefix(name, "MesgNum(") || name == "" {
		return fmt.Sprintf("global_%d", global)
	}
	return snakeCase(name)
}

var fileTypeNames = map[uint8]string{
	1:  "device",
	2:  "settings",
	3:  "sport",
	4:  "activity",
	5:  "workout",
	6:  "course",
	7:  "schedules",
	9:  "weight",
	10: "totals",
	11: "goals",
	14: "blood_pressure",
	15: "monitoring_a",
	20: "activity_summary",
	28: "monitoring_daily",
	32: "monitoring_b",
	34: "segment",
	35: "segment_list",
}

func scaleFileType(decoded any) (any, bool) {
	v, ok := decoded.(uint8)
	if !ok {
		return nil, false
	}
	if name, ok := fileTypeNames[v]; ok {
		return name, true
	}
	name := fmt.Sprint(fit.FileType(v))
	if strings.HasPrefix(name, "FileType(") || name == "" {
		return fmt.Sprintf("file_type_%d", v), true
	}
	return snakeCase(name), true
}

func scaleBy(scale, offset float64) func(any) (any, bool) {
	return func(decoded any) (any, bool) {
		if v, ok := toFloat(decoded); ok {
			return (v / scale) - offset, true
		}
		return nil, false
	}
}

func scaleTimestamp(decoded any) (any, bool) {
	var raw uint32
	switch v := decoded.(type) {
	case uint32:
		raw = v
	case uint64:
		raw = uint32(v)
	default:
		return nil, false
	}
	if raw == 0xFFFFFFFF {
		return nil, false
	}
	return fitTime(raw), true
}

func fitTime(raw uint32) time.Time {
	return fitEpoch.Add(time.Duration(raw) * time.Second).UTC()
}

// snakeCase turns generated Go identifiers such as "MonitoringInfo" or
// "MonitoringB" into profile-style names.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
