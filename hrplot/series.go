// Package hrplot prepares heart-rate samples for plotting and renders them
// as one line per file group on a shared time axis.
package hrplot

import (
	"math"
	"sort"
	"time"

	fittrack "github.com/lucasjlepore/fit-tracker"
)

// Point is one plotted value. A NaN HeartRate marks a break in the line.
type Point struct {
	Time      time.Time
	HeartRate float64
}

// IsGap reports whether p is a break marker.
func (p Point) IsGap() bool {
	return math.IsNaN(p.HeartRate)
}

// Series is the plotted line for one group.
type Series struct {
	Group  fittrack.FileType
	Points []Point
}

// Input is the extracted samples of one file and the group it plots under.
type Input struct {
	Group   fittrack.FileType
	Samples []fittrack.HeartRateSample
}

// Prepare merges inputs by group, sorts each group chronologically, inserts a
// gap marker wherever consecutive samples are further apart than
// cal.GapThreshold and shifts every point by cal.DisplayOffset. Series come
// back ordered by group name.
func Prepare(inputs []Input, cal fittrack.Calibration) []Series {
	byGroup := make(map[fittrack.FileType][]fittrack.HeartRateSample)
	for _, in := range inputs {
		byGroup[in.Group] = append(byGroup[in.Group], in.Samples...)
	}

	groups := make([]fittrack.FileType, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })

	out := make([]Series, 0, len(groups))
	for _, g := range groups {
		samples := byGroup[g]
		if len(samples) == 0 {
			continue
		}
		fittrack.SortSamples(samples)
		out = append(out, Series{Group: g, Points: points(samples, cal)})
	}
	return out
}

func points(samples []fittrack.HeartRateSample, cal fittrack.Calibration) []Point {
	pts := make([]Point, 0, len(samples))
	for i, s := range samples {
		if i > 0 && cal.GapThreshold > 0 && s.Timestamp.Sub(samples[i-1].Timestamp) > cal.GapThreshold {
			pts = append(pts, Point{
				Time:      samples[i-1].Timestamp.Add(cal.DisplayOffset),
				HeartRate: math.NaN(),
			})
		}
		pts = append(pts, Point{
			Time:      s.Timestamp.Add(cal.DisplayOffset),
			HeartRate: float64(s.HeartRate),
		})
	}
	return pts
}

// Segments splits the series at gap markers into unbroken runs.
func (s Series) Segments() [][]Point {
	var segs [][]Point
	start := 0
	for i, p := range s.Points {
		if !p.IsGap() {
			continue
		}
		if i > start {
			segs = append(segs, s.Points[start:i])
		}
		start = i + 1
	}
	if start < len(s.Points) {
		segs = append(segs, s.Points[start:])
	}
	return segs
}
