package fittrack

import (
	"math"
	"sort"
	"time"

	"github.com/lucasjlepore/fit-tracker/fitmsg"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the heart-rate samples of one file.
type Summary struct {
	FileType        FileType  `json:"file_type"`
	ActivityType    string    `json:"activity_type"`
	DataType        string    `json:"data_type"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds float64   `json:"duration_seconds"`
	SampleCount     int       `json:"sample_count"`
	GapCount        int       `json:"gap_count"`
	MinHeartRate    float64   `json:"min_heart_rate_bpm"`
	MaxHeartRate    float64   `json:"max_heart_rate_bpm"`
	MeanHeartRate   float64   `json:"mean_heart_rate_bpm"`
	MedianHeartRate float64   `json:"median_heart_rate_bpm"`
	StdDevHeartRate float64   `json:"stddev_heart_rate_bpm"`

	// Measurements and Correlations cover the record messages of the
	// file, including fields other than heart rate.
	Measurements []Measurement     `json:"measurements"`
	Correlations []Correlation     `json:"correlations"`
	Tags         map[string]string `json:"tags,omitempty"`

	Notes string `json:"notes"`
}

// SortSamples orders samples chronologically in place.
func SortSamples(samples []HeartRateSample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
}

// Summarize extracts and aggregates the heart-rate samples of a file, then
// adds statistics for every record measurement and the DefaultCorrelates
// between them. Tags are attached to the result unchanged.
func Summarize(msgs []fitmsg.Message, cal Calibration, tags map[string]string) *Summary {
	samples := NewExtractor(cal).Extract(msgs)
	s := SummarizeSamples(samples, cal.GapThreshold)
	s.FileType = GroupType(msgs)
	s.ActivityType = ClassifyActivity(msgs)
	s.DataType = FriendlyDataType(msgs)

	values := recordSeries(msgs, s.FileType == FileTypeActivity)
	s.Measurements = values.measurements()
	s.Correlations = values.correlations(DefaultCorrelates)
	if len(tags) > 0 {
		s.Tags = tags
	}

	s.Notes = BuildHeartRateNotes(s)
	return s
}

// SummarizeSamples computes statistics over samples. A gap is any interval
// between consecutive samples longer than gapThreshold; a non-positive
// threshold disables gap counting.
func SummarizeSamples(samples []HeartRateSample, gapThreshold time.Duration) *Summary {
	s := &Summary{SampleCount: len(samples)}
	if len(samples) == 0 {
		return s
	}

	sorted := append([]HeartRateSample(nil), samples...)
	SortSamples(sorted)

	s.StartTime = sorted[0].Timestamp
	s.EndTime = sorted[len(sorted)-1].Timestamp
	s.DurationSeconds = s.EndTime.Sub(s.StartTime).Seconds()

	values := make([]float64, 0, len(sorted))
	for i, sample := range sorted {
		values = append(values, float64(sample.HeartRate))
		if i > 0 && gapThreshold > 0 && sample.Timestamp.Sub(sorted[i-1].Timestamp) > gapThreshold {
			s.GapCount++
		}
	}

	s.MeanHeartRate = stat.Mean(values, nil)
	if len(values) > 1 {
		s.StdDevHeartRate = stat.StdDev(values, nil)
	}

	sort.Float64s(values)
	s.MinHeartRate = values[0]
	s.MaxHeartRate = values[len(values)-1]
	s.MedianHeartRate = stat.Quantile(0.5, stat.Empirical, values, nil)
	if math.IsNaN(s.StdDevHeartRate) {
		s.StdDevHeartRate = 0
	}
	return s
}
