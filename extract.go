// Package fittrack extracts heart-rate samples from decoded FIT messages
// and classifies the files they came from.
package fittrack

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucasjlepore/fit-tracker/fitmsg"
)

var (
	// ErrMissingAnchor means no base timestamp message exists for a file type
	// that needs one.
	ErrMissingAnchor = errors.New("missing base timestamp anchor")

	// ErrUnrecognizedFileType means the file type has no timestamp rules.
	ErrUnrecognizedFileType = errors.New("unrecognized file type")

	// ErrMissingField means a heart-rate message lacked the field needed to
	// place it in time.
	ErrMissingField = errors.New("missing field")
)

// HeartRateSample is one heart-rate reading placed in absolute time.
type HeartRateSample struct {
	Timestamp time.Time `json:"timestamp"`
	HeartRate int       `json:"heart_rate"`
}

// ResolveBaseTimestamp finds the anchor used to reconstruct timestamps.
//
// Activity files anchor on the first device_info timestamp. Monitoring files
// anchor on the first monitoring_info that has a local_timestamp, but return
// that message's timestamp field. Other types anchor on the Unix epoch. The
// second result is false when a required anchor is missing.
func ResolveBaseTimestamp(fileType FileType, msgs []fitmsg.Message) (time.Time, bool) {
	switch fileType {
	case FileTypeActivity:
		for _, m := range msgs {
			if m.Name != "device_info" {
				continue
			}
			if ts, ok := m.Time("timestamp"); ok {
				return ts, true
			}
		}
		return time.Time{}, false
	case FileTypeMonitoringB:
		for _, m := range msgs {
			if m.Name != "monitoring_info" || !m.Has("local_timestamp") {
				continue
			}
			if ts, ok := m.Time("timestamp"); ok {
				return ts, true
			}
		}
		return time.Time{}, false
	default:
		return time.Unix(0, 0).UTC(), true
	}
}

// ReconstructTimestamp places a message in absolute time. Monitoring messages
// only carry timestamp_16, the low 16 bits of the device clock, which is
// unwrapped forward from base.
func ReconstructTimestamp(cal Calibration, fileType FileType, base time.Time, m fitmsg.Message) (time.Time, bool) {
	switch fileType {
	case FileTypeActivity:
		return m.Time("timestamp")
	case FileTypeMonitoringB:
		ts16, ok := m.Int("timestamp_16")
		if !ok {
			return time.Time{}, false
		}
		base32 := uint32(base.Unix())
		delta := uint16(ts16) - uint16(base32&0xFFFF)
		sec := int64(base32) + int64(delta) + int64(cal.MonitoringOffset/time.Second)
		return time.Unix(sec, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// Extractor pulls heart-rate samples out of decoded messages.
// The zero value uses no monitoring offset; use NewExtractor for defaults.
type Extractor struct {
	Calibration Calibration
}

// NewExtractor returns an extractor using cal.
func NewExtractor(cal Calibration) *Extractor {
	return &Extractor{Calibration: cal}
}

// Extract returns heart-rate samples in message order. Messages without a
// positive heart_rate or without a reconstructable timestamp are skipped, and
// a file whose anchor is missing yields no samples. The result is not sorted.
func (e *Extractor) Extract(msgs []fitmsg.Message) []HeartRateSample {
	fileType := ClassifyFile(msgs)
	base, ok := ResolveBaseTimestamp(fileType, msgs)
	if !ok {
		return []HeartRateSample{}
	}

	samples := make([]HeartRateSample, 0, len(msgs))
	for _, m := range msgs {
		hr, ok := m.Int("heart_rate")
		if !ok || hr <= 0 {
			continue
		}
		ts, ok := ReconstructTimestamp(e.Calibration, fileType, base, m)
		if !ok {
			continue
		}
		samples = append(samples, HeartRateSample{Timestamp: ts, HeartRate: int(hr)})
	}
	return samples
}

// Diagnose explains why Extract would drop data from msgs. It returns nil when
// every heart-rate message can be placed in time.
func (e *Extractor) Diagnose(msgs []fitmsg.Message) error {
	fileType := ClassifyFile(msgs)
	if fileType != FileTypeActivity && fileType != FileTypeMonitoringB {
		return fmt.Errorf("%w: %s", ErrUnrecognizedFileType, fileType)
	}
	base, ok := ResolveBaseTimestamp(fileType, msgs)
	if !ok {
		return fmt.Errorf("%w: %s file", ErrMissingAnchor, fileType)
	}

	skipped := 0
	for _, m := range msgs {
		hr, ok := m.Int("heart_rate")
		if !ok || hr <= 0 {
			continue
		}
		if _, ok := ReconstructTimestamp(e.Calibration, fileType, base, m); !ok {
			skipped++
		}
	}
	if skipped > 0 {
		return fmt.Errorf("%w: %d heart rate messages without a usable timestamp", ErrMissingField, skipped)
	}
	return nil
}

// ExtractHeartRate extracts samples using the default calibration.
func ExtractHeartRate(msgs []fitmsg.Message) []HeartRateSample {
	return NewExtractor(DefaultCalibration()).Extract(msgs)
}
