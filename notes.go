package fittrack

import (
	"fmt"
	"math"
	"strings"
)

// BuildHeartRateNotes renders a short plain-text summary.
func BuildHeartRateNotes(s *Summary) string {
	if s == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "File: %s (%s, label %s)\n", s.FileType, s.ActivityType, s.DataType)
	if s.SampleCount == 0 {
		b.WriteString("No heart rate samples.\n")
		return strings.TrimSpace(b.String())
	}

	fmt.Fprintf(
		&b,
		"Span: %s -> %s (%s)\n",
		s.StartTime.UTC().Format("2006-01-02 15:04:05"),
		s.EndTime.UTC().Format("2006-01-02 15:04:05"),
		formatDuration(s.DurationSeconds),
	)
	fmt.Fprintf(
		&b,
		"HR %.0f min / %.0f median / %.0f mean / %.0f max bpm | SD %.1f\n",
		s.MinHeartRate,
		s.MedianHeartRate,
		s.MeanHeartRate,
		s.MaxHeartRate,
		s.StdDevHeartRate,
	)
	fmt.Fprintf(&b, "Samples: %d", s.SampleCount)
	if s.GapCount > 0 {
		fmt.Fprintf(&b, " | %d gaps in recording", s.GapCount)
	}
	b.WriteByte('\n')

	for _, m := range s.Measurements {
		if m.Name == MeasureHeartRate {
			continue
		}
		fmt.Fprintf(&b, "%s: %.1f min / %.1f mean / %.1f max (%s)\n", m.Name, m.Minimum, m.Mean, m.Maximum, m.Unit)
	}
	for _, c := range s.Correlations {
		fmt.Fprintf(&b, "Correlation %s/%s: %.2f\n", c.MeasurementA, c.MeasurementB, c.Correlation)
	}

	return strings.TrimSpace(b.String())
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
