package fittrack

import "time"

// Calibration holds device- and timezone-specific constants. The defaults
// match the recording device these tools were built against; they are not
// general truths about FIT data.
type Calibration struct {
	// MonitoringOffset is added to every reconstructed monitoring_b timestamp
	// to align the device's rolling local clock with UTC.
	MonitoringOffset time.Duration

	// GapThreshold is the largest interval between consecutive samples that
	// is still drawn as a continuous line.
	GapThreshold time.Duration

	// DisplayOffset shifts timestamps before plotting.
	DisplayOffset time.Duration
}

const (
	// DefaultMonitoringOffset is the default Calibration.MonitoringOffset.
	DefaultMonitoringOffset = 19800 * time.Second
	// DefaultGapThreshold is the default Calibration.GapThreshold.
	DefaultGapThreshold = 60 * time.Second
	// DefaultDisplayOffset is the default Calibration.DisplayOffset.
	DefaultDisplayOffset = -9 * time.Hour
)

// DefaultCalibration returns the calibration used when nothing is configured.
func DefaultCalibration() Calibration {
	return Calibration{
		MonitoringOffset: DefaultMonitoringOffset,
		GapThreshold:     DefaultGapThreshold,
		DisplayOffset:    DefaultDisplayOffset,
	}
}
