package fittrack

import (
	"math"
	"sort"

	"github.com/jftuga/geodist"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
	"gonum.org/v1/gonum/stat"
)

// Measurement names reported in a Summary.
const (
	MeasureHeartRate        = "heart_rate"
	MeasureAltitude         = "altitude"
	MeasureTemperature      = "temperature"
	MeasureDistance         = "distance"
	MeasureVincentyDistance = "vincenty_distance"
	MeasureSpeed            = "speed"
	MeasureCadence          = "cadence"
)

// Measurement holds statistics for one record field across a file.
type Measurement struct {
	Name              string  `json:"name"`
	Unit              string  `json:"unit"`
	Count             int     `json:"count"`
	Minimum           float64 `json:"minimum"`
	Maximum           float64 `json:"maximum"`
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	StandardDeviation float64 `json:"standard_deviation"`
}

// Correlation is the Pearson correlation between two measurements, taken
// over the records where both are present.
type Correlation struct {
	MeasurementA string  `json:"measurement_a"`
	MeasurementB string  `json:"measurement_b"`
	Correlation  float64 `json:"correlation"`
}

// DefaultCorrelates are the measurement pairs correlated by Summarize.
var DefaultCorrelates = [][2]string{
	{MeasureHeartRate, MeasureCadence},
	{MeasureHeartRate, MeasureSpeed},
	{MeasureCadence, MeasureSpeed},
}

// positionSearchLimit is how many records may pass without a position fix
// before distance from start is no longer tracked.
const positionSearchLimit = 60

type measureDef struct {
	name   string
	unit   string
	fields []string
	sport  bool
}

// Fields are tried in order; the first present one is used.
var measureDefs = []measureDef{
	{name: MeasureHeartRate, unit: "1 / minute", fields: []string{"heart_rate"}},
	{name: MeasureAltitude, unit: "meter", fields: []string{"enhanced_altitude", "altitude"}},
	{name: MeasureTemperature, unit: "degrees Celsius", fields: []string{"temperature"}},
	{name: MeasureDistance, unit: "meter", fields: []string{"distance"}, sport: true},
	{name: MeasureSpeed, unit: "meter / second", fields: []string{"enhanced_speed", "speed"}, sport: true},
	{name: MeasureCadence, unit: "1 / minute", fields: []string{"cadence"}, sport: true},
}

const vincentyUnit = "meter"

// series keeps one slot per record; NaN marks an absent value so pairs
// stay aligned for correlation.
type series map[string][]float64

// recordSeries collects measurement values from record messages. Sport
// measurements are skipped for monitoring and all-day tracking files.
func recordSeries(msgs []fitmsg.Message, sport bool) series {
	s := make(series)
	var start *geodist.Coord
	index := 0
	for _, m := range msgs {
		if m.Name != "record" {
			continue
		}
		index++
		for _, def := range measureDefs {
			if def.sport && !sport {
				continue
			}
			s[def.name] = append(s[def.name], recordValue(m, def))
		}
		if !sport {
			continue
		}

		dist := math.NaN()
		if pos, ok := position(m); ok && (start != nil || index <= positionSearchLimit) {
			if start == nil {
				start = &pos
			} else if _, km, err := geodist.VincentyDistance(*start, pos); err == nil {
				dist = km * 1000
			}
		}
		s[MeasureVincentyDistance] = append(s[MeasureVincentyDistance], dist)
	}
	return s
}

func recordValue(m fitmsg.Message, def measureDef) float64 {
	for _, field := range def.fields {
		v, ok := m.Float(field)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if def.name == MeasureHeartRate && v <= 0 {
			return math.NaN()
		}
		return v
	}
	return math.NaN()
}

// position converts the record's semicircle coordinates to degrees.
func position(m fitmsg.Message) (geodist.Coord, bool) {
	lat, latOK := m.Float("position_lat")
	lon, lonOK := m.Float("position_long")
	if !latOK || !lonOK {
		return geodist.Coord{}, false
	}
	const semicircle = 180 / float64(1<<31)
	return geodist.Coord{Lat: lat * semicircle, Lon: lon * semicircle}, true
}

// measurements finalizes every series with at least two present values,
// in the fixed order of measureDefs followed by the Vincenty distance.
func (s series) measurements() []Measurement {
	names := make([]string, 0, len(measureDefs)+1)
	units := make(map[string]string, len(measureDefs)+1)
	for _, def := range measureDefs {
		names = append(names, def.name)
		units[def.name] = def.unit
	}
	names = append(names, MeasureVincentyDistance)
	units[MeasureVincentyDistance] = vincentyUnit

	var out []Measurement
	for _, name := range names {
		values := present(s[name])
		if len(values) < 2 {
			continue
		}
		sort.Float64s(values)
		out = append(out, Measurement{
			Name:              name,
			Unit:              units[name],
			Count:             len(values),
			Minimum:           values[0],
			Maximum:           values[len(values)-1],
			Mean:              stat.Mean(values, nil),
			Median:            stat.Quantile(0.5, stat.Empirical, values, nil),
			StandardDeviation: stat.StdDev(values, nil),
		})
	}
	return out
}

// correlations computes each pair over the records where both values are
// present. Pairs with fewer than two shared values or no variance are left
// out.
func (s series) correlations(pairs [][2]string) []Correlation {
	var out []Correlation
	for _, pair := range pairs {
		a, b := s[pair[0]], s[pair[1]]
		if len(a) == 0 || len(a) != len(b) {
			continue
		}
		xs := make([]float64, 0, len(a))
		ys := make([]float64, 0, len(b))
		for i := range a {
			if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
				continue
			}
			xs = append(xs, a[i])
			ys = append(ys, b[i])
		}
		if len(xs) < 2 {
			continue
		}
		c := stat.Correlation(xs, ys, nil)
		if math.IsNaN(c) {
			continue
		}
		out = append(out, Correlation{MeasurementA: pair[0], MeasurementB: pair[1], Correlation: c})
	}
	return out
}

func present(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
