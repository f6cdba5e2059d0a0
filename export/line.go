package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	lp "github.com/influxdata/line-protocol/v2/lineprotocol"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
)

// Measurement is the line protocol measurement written for track records.
const Measurement = "fit_track"

// LineOptions controls WriteLineProtocol.
type LineOptions struct {
	// Device is written as the device tag. It is required.
	Device string
	// Tags are extra tags added to every line.
	Tags map[string]string
	// DecodedTimestamps writes the decoded UTC instant instead of the raw
	// FIT timestamp value.
	DecodedTimestamps bool
}

// WriteLineProtocol writes one fit_track line per record message. Numeric
// track fields become line fields; records carrying none of them are
// skipped. Lines are stamped with second precision.
func WriteLineProtocol(w io.Writer, msgs []fitmsg.Message, opts LineOptions) error {
	if opts.Device == "" {
		return fmt.Errorf("line protocol: device tag is required")
	}
	tags := sortedTags(opts)

	var enc lp.Encoder
	enc.SetPrecision(lp.Second)
	for _, m := range msgs {
		if m.Name != "record" {
			continue
		}
		fields := lineFields(m)
		if len(fields) == 0 {
			continue
		}
		ts, ok := lineTimestamp(m, opts.DecodedTimestamps)
		if !ok {
			continue
		}

		enc.StartLine(Measurement)
		for _, t := range tags {
			enc.AddTag(t[0], t[1])
		}
		for _, f := range fields {
			enc.AddField(f.key, f.value)
		}
		enc.EndLine(ts)
	}
	if err := enc.Err(); err != nil {
		return fmt.Errorf("encode line protocol: %w", err)
	}
	_, err := w.Write(enc.Bytes())
	return err
}

type lineField struct {
	key   string
	value lp.Value
}

func lineFields(m fitmsg.Message) []lineField {
	var fields []lineField
	for _, name := range TrackFields {
		if name == "timestamp" {
			continue
		}
		v, ok := m.Get(name)
		if !ok {
			continue
		}
		if val, ok := lineValue(v); ok {
			fields = append(fields, lineField{key: name, value: val})
		}
	}
	return fields
}

func lineValue(v any) (lp.Value, bool) {
	switch x := v.(type) {
	case uint8:
		return lp.UintValue(uint64(x)), true
	case uint16:
		return lp.UintValue(uint64(x)), true
	case uint32:
		return lp.UintValue(uint64(x)), true
	case uint64:
		return lp.UintValue(x), true
	case uint:
		return lp.UintValue(uint64(x)), true
	case int8:
		return lp.IntValue(int64(x)), true
	case int16:
		return lp.IntValue(int64(x)), true
	case int32:
		return lp.IntValue(int64(x)), true
	case int64:
		return lp.IntValue(x), true
	case int:
		return lp.IntValue(int64(x)), true
	case float32:
		return lp.FloatValue(float64(x))
	case float64:
		return lp.FloatValue(x)
	default:
		return lp.Value{}, false
	}
}

// lineTimestamp returns the instant a line is stamped with. The raw FIT
// value counts seconds since the FIT epoch but is written as if it were
// Unix seconds.
func lineTimestamp(m fitmsg.Message, decoded bool) (time.Time, bool) {
	if decoded {
		return m.Time("timestamp")
	}
	raw, ok := m.RawValue("timestamp")
	if !ok {
		return time.Time{}, false
	}
	switch x := raw.(type) {
	case uint32:
		return time.Unix(int64(x), 0).UTC(), true
	case uint64:
		return time.Unix(int64(x), 0).UTC(), true
	case time.Time:
		return x.UTC(), !x.IsZero()
	default:
		return time.Time{}, false
	}
}

func sortedTags(opts LineOptions) [][2]string {
	tags := make([][2]string, 0, len(opts.Tags)+1)
	tags = append(tags, [2]string{"device", opts.Device})
	for k, v := range opts.Tags {
		if k == "device" || k == "" || v == "" {
			continue
		}
		tags = append(tags, [2]string{k, v})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i][0] < tags[j][0] })
	return tags
}
