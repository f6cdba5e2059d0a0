package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
)

// TrackFields are the record fields exported per row, in column order.
var TrackFields = []string{"heart_rate", "enhanced_altitude", "temperature", "timestamp"}

// WriteTrackCSV writes one row per record message in file order. Absent
// values are written as empty cells.
func WriteTrackCSV(w io.Writer, msgs []fitmsg.Message) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TrackFields); err != nil {
		return err
	}
	for _, m := range msgs {
		if m.Name != "record" {
			continue
		}
		row := make([]string, 0, len(TrackFields))
		for _, name := range TrackFields {
			row = append(row, formatCell(m, name))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(m fitmsg.Message, name string) string {
	if ts, ok := m.Time(name); ok {
		return ts.UTC().Format(time.RFC3339)
	}
	if v, ok := m.Float(name); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if s, ok := m.Text(name); ok {
		return s
	}
	return ""
}

// WriteSamplesCSV writes extracted samples as timestamp,heart_rate rows.
func WriteSamplesCSV(w io.Writer, samples []fittrack.HeartRateSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "heart_rate"}); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write([]string{s.Timestamp.UTC().Format(time.RFC3339), strconv.Itoa(s.HeartRate)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
