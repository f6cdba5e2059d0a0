package fittrack

import (
	"testing"
	"time"

	"github.com/lucasjlepore/fit-tracker/fitmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSamples(t *testing.T) {
	samples := []HeartRateSample{
		{Timestamp: unix(1120), HeartRate: 100},
		{Timestamp: unix(1000), HeartRate: 60},
		{Timestamp: unix(1010), HeartRate: 80},
		{Timestamp: unix(1005), HeartRate: 70},
	}

	s := SummarizeSamples(samples, time.Minute)
	assert.Equal(t, 4, s.SampleCount)
	assert.Equal(t, 1, s.GapCount)
	assert.True(t, s.StartTime.Equal(unix(1000)))
	assert.True(t, s.EndTime.Equal(unix(1120)))
	assert.InDelta(t, 120, s.DurationSeconds, 1e-9)
	assert.InDelta(t, 60, s.MinHeartRate, 1e-9)
	assert.InDelta(t, 100, s.MaxHeartRate, 1e-9)
	assert.InDelta(t, 77.5, s.MeanHeartRate, 1e-9)
	assert.InDelta(t, 70, s.MedianHeartRate, 1e-9)
	assert.Greater(t, s.StdDevHeartRate, 0.0)

	// input is left untouched
	assert.Equal(t, 100, samples[0].HeartRate)
}

func TestSummarizeSamplesEdgeCases(t *testing.T) {
	empty := SummarizeSamples(nil, time.Minute)
	assert.Equal(t, 0, empty.SampleCount)
	assert.True(t, empty.StartTime.IsZero())

	one := SummarizeSamples([]HeartRateSample{{Timestamp: unix(5), HeartRate: 72}}, time.Minute)
	assert.Equal(t, 1, one.SampleCount)
	assert.Zero(t, one.StdDevHeartRate)
	assert.InDelta(t, 72, one.MedianHeartRate, 1e-9)

	noGaps := SummarizeSamples([]HeartRateSample{
		{Timestamp: unix(0), HeartRate: 72},
		{Timestamp: unix(10000), HeartRate: 72},
	}, 0)
	assert.Zero(t, noGaps.GapCount)
}

func TestSummarize(t *testing.T) {
	s := Summarize(monitoringMessages(), DefaultCalibration(), nil)
	require.Equal(t, 1, s.SampleCount)
	assert.Equal(t, FileTypeMonitoringB, s.FileType)
	assert.Equal(t, ActivityUnknown, s.ActivityType)
	assert.Equal(t, "monitor", s.DataType)
	assert.Contains(t, s.Notes, "File: monitoring_b (unknown, label monitor)")
	assert.Contains(t, s.Notes, "Samples: 1")
	assert.Empty(t, s.Measurements)
	assert.Empty(t, s.Correlations)
	assert.Nil(t, s.Tags)
}

// degrees converts to FIT semicircles.
func degrees(d float64) int32 {
	return int32(d * float64(1<<31) / 180)
}

func sportRecords() []fitmsg.Message {
	return []fitmsg.Message{
		fitmsg.New("file_id", map[string]any{"type": "activity"}),
		fitmsg.New("sport", map[string]any{"name": "Bike"}),
		fitmsg.New("device_info", map[string]any{"timestamp": unix(1000)}),
		fitmsg.New("record", map[string]any{
			"timestamp": unix(1001), "heart_rate": uint8(100), "cadence": uint8(80),
			"enhanced_speed": 2.0, "enhanced_altitude": 10.0, "temperature": int8(20),
			"position_lat": degrees(45), "position_long": int32(0),
		}),
		fitmsg.New("record", map[string]any{
			"timestamp": unix(1002), "heart_rate": uint8(110), "cadence": uint8(85),
			"enhanced_speed": 3.0, "enhanced_altitude": 12.0, "temperature": int8(21),
			"position_lat": degrees(46), "position_long": int32(0),
		}),
		fitmsg.New("record", map[string]any{
			"timestamp": unix(1003), "heart_rate": uint8(120), "cadence": uint8(90),
			"enhanced_speed": nil, "altitude": 14.0,
			"position_lat": degrees(47), "position_long": int32(0),
		}),
		fitmsg.New("record", map[string]any{
			"timestamp": unix(1004), "heart_rate": uint8(130), "cadence": uint8(95),
			"enhanced_speed": 5.0, "enhanced_altitude": 16.0, "temperature": int8(22),
			"position_lat": degrees(48), "position_long": int32(0),
		}),
	}
}

func TestSummarizeMeasurements(t *testing.T) {
	s := Summarize(sportRecords(), DefaultCalibration(), map[string]string{"device": "watch"})
	assert.Equal(t, map[string]string{"device": "watch"}, s.Tags)

	byName := make(map[string]Measurement)
	var order []string
	for _, m := range s.Measurements {
		byName[m.Name] = m
		order = append(order, m.Name)
	}
	assert.Equal(t, []string{
		MeasureHeartRate, MeasureAltitude, MeasureTemperature, MeasureSpeed, MeasureCadence, MeasureVincentyDistance,
	}, order)

	hr := byName[MeasureHeartRate]
	assert.Equal(t, 4, hr.Count)
	assert.Equal(t, "1 / minute", hr.Unit)
	assert.InDelta(t, 115, hr.Mean, 1e-9)
	assert.InDelta(t, 110, hr.Median, 1e-9)

	// altitude falls back to the non-enhanced field
	alt := byName[MeasureAltitude]
	assert.Equal(t, 4, alt.Count)
	assert.InDelta(t, 10, alt.Minimum, 1e-9)
	assert.InDelta(t, 16, alt.Maximum, 1e-9)

	temp := byName[MeasureTemperature]
	assert.Equal(t, 3, temp.Count)
	assert.InDelta(t, 21, temp.Mean, 1e-9)

	speed := byName[MeasureSpeed]
	assert.Equal(t, 3, speed.Count)
	assert.Equal(t, "meter / second", speed.Unit)

	// distances from the first fix at 45N, one per later record
	dist := byName[MeasureVincentyDistance]
	assert.Equal(t, 3, dist.Count)
	assert.InDelta(t, 111_100, dist.Minimum, 1_500)
	assert.InDelta(t, 333_500, dist.Maximum, 2_500)

	require.Len(t, s.Correlations, 3)
	for _, c := range s.Correlations {
		assert.InDelta(t, 1, c.Correlation, 1e-9, "%s/%s", c.MeasurementA, c.MeasurementB)
	}
	assert.Equal(t, MeasureHeartRate, s.Correlations[0].MeasurementA)
	assert.Equal(t, MeasureCadence, s.Correlations[0].MeasurementB)

	assert.Contains(t, s.Notes, "altitude: 10.0 min / 13.0 mean / 16.0 max (meter)")
	assert.Contains(t, s.Notes, "Correlation heart_rate/speed: 1.00")
}

func TestSummarizeTrackingSkipsSportMeasurements(t *testing.T) {
	msgs := sportRecords()
	msgs[1] = fitmsg.New("sport", map[string]any{"name": ActivityTracking})

	s := Summarize(msgs, DefaultCalibration(), nil)
	assert.Equal(t, FileTypeTracking, s.FileType)
	for _, m := range s.Measurements {
		assert.NotContains(t, []string{MeasureSpeed, MeasureCadence, MeasureDistance, MeasureVincentyDistance}, m.Name)
	}
	assert.Empty(t, s.Correlations)
}

func TestSummarizeSkipsSparseMeasurements(t *testing.T) {
	msgs := []fitmsg.Message{
		fitmsg.New("file_id", map[string]any{"type": "activity"}),
		fitmsg.New("device_info", map[string]any{"timestamp": unix(1000)}),
		fitmsg.New("record", map[string]any{"timestamp": unix(1001), "heart_rate": uint8(90), "cadence": uint8(70)}),
		fitmsg.New("record", map[string]any{"timestamp": unix(1002), "heart_rate": uint8(95), "enhanced_speed": 3.0}),
		fitmsg.New("record", map[string]any{"timestamp": unix(1003), "heart_rate": uint8(0), "cadence": uint8(72)}),
	}

	s := Summarize(msgs, DefaultCalibration(), nil)
	require.Len(t, s.Measurements, 2)
	assert.Equal(t, MeasureHeartRate, s.Measurements[0].Name)
	assert.Equal(t, 2, s.Measurements[0].Count)
	assert.Equal(t, MeasureCadence, s.Measurements[1].Name)
	// no record carries two of the correlated fields with heart rate
	assert.Empty(t, s.Correlations)
}

func TestVincentyDistanceNeedsEarlyFix(t *testing.T) {
	msgs := []fitmsg.Message{fitmsg.New("file_id", map[string]any{"type": "activity"})}
	for i := 0; i < positionSearchLimit; i++ {
		msgs = append(msgs, fitmsg.New("record", map[string]any{"heart_rate": uint8(90)}))
	}
	for i := 0; i < 3; i++ {
		msgs = append(msgs, fitmsg.New("record", map[string]any{
			"position_lat": degrees(45 + float64(i)), "position_long": int32(0),
		}))
	}

	values := recordSeries(msgs, true)
	assert.Empty(t, present(values[MeasureVincentyDistance]))
}

func TestBuildHeartRateNotes(t *testing.T) {
	assert.Empty(t, BuildHeartRateNotes(nil))

	s := &Summary{FileType: FileTypeActivity, ActivityType: "Walk", DataType: "walk"}
	assert.Equal(t, "File: activity (Walk, label walk)\nNo heart rate samples.", BuildHeartRateNotes(s))

	s = SummarizeSamples([]HeartRateSample{
		{Timestamp: unix(0), HeartRate: 60},
		{Timestamp: unix(3725), HeartRate: 80},
	}, time.Minute)
	s.FileType, s.ActivityType, s.DataType = FileTypeActivity, "Walk", "walk"
	notes := BuildHeartRateNotes(s)
	assert.Contains(t, notes, "Span: 1970-01-01 00:00:00 -> 1970-01-01 01:02:05 (1h02m05s)")
	assert.Contains(t, notes, "HR 60 min / 60 median / 70 mean / 80 max bpm")
	assert.Contains(t, notes, "Samples: 2 | 1 gaps in recording")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", formatDuration(0))
	assert.Equal(t, "45s", formatDuration(45))
	assert.Equal(t, "2m05s", formatDuration(125))
	assert.Equal(t, "1h00m01s", formatDuration(3601))
}
