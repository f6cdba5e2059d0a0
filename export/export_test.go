package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

var fitEpoch = time.Date(1989, time.December, 31, 0, 0, 0, 0, time.UTC)

// record builds a decoded-looking record message whose timestamp keeps its
// raw FIT seconds alongside the decoded instant.
func record(raw uint32, fields map[string]any) fitmsg.Message {
	m := fitmsg.New("record", fields)
	m.Fields["timestamp"] = fitmsg.Field{
		Number: 253,
		Raw:    raw,
		Value:  fitEpoch.Add(time.Duration(raw) * time.Second),
	}
	return m
}

func trackMessages() []fitmsg.Message {
	return []fitmsg.Message{
		fitmsg.New("file_id", map[string]any{"type": "activity"}),
		record(1000, map[string]any{"heart_rate": uint8(70), "enhanced_altitude": 12.5, "temperature": int8(21)}),
		fitmsg.New("event", map[string]any{"timestamp": time.Unix(5, 0)}),
		record(1001, map[string]any{"heart_rate": nil, "enhanced_altitude": 13.0}),
		record(1002, nil),
	}
}

func TestWriteTrackCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTrackCSV(&buf, trackMessages()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, TrackFields, rows[0])
	assert.Equal(t, []string{"70", "12.5", "21", "1990-01-01T00:16:40Z"}, rows[1])
	assert.Equal(t, []string{"", "13", "", "1990-01-01T00:16:41Z"}, rows[2])
	assert.Equal(t, []string{"", "", "", "1990-01-01T00:16:42Z"}, rows[3])
}

func TestWriteTrackCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTrackCSV(&buf, nil))
	assert.Equal(t, "heart_rate,enhanced_altitude,temperature,timestamp\n", buf.String())
}

func TestWriteLineProtocolRawTimestamps(t *testing.T) {
	var buf bytes.Buffer
	err := WriteLineProtocol(&buf, trackMessages(), LineOptions{
		Device: "watch",
		Tags:   map[string]string{"site": "home", "athlete": "me"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "fit_track,athlete=me,device=watch,site=home heart_rate=70u,enhanced_altitude=12.5,temperature=21i 1000", lines[0])
	assert.Equal(t, "fit_track,athlete=me,device=watch,site=home enhanced_altitude=13 1001", lines[1])
}

func TestWriteLineProtocolDecodedTimestamps(t *testing.T) {
	var buf bytes.Buffer
	err := WriteLineProtocol(&buf, trackMessages()[:2], LineOptions{Device: "watch", DecodedTimestamps: true})
	require.NoError(t, err)
	want := fitEpoch.Add(1000 * time.Second).Unix()
	assert.Equal(t, "fit_track,device=watch heart_rate=70u,enhanced_altitude=12.5,temperature=21i "+
		strconv.FormatInt(want, 10)+"\n", buf.String())
}

func TestWriteLineProtocolRequiresDevice(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteLineProtocol(&buf, trackMessages(), LineOptions{}))
	assert.Zero(t, buf.Len())
}

func TestLineValueRejectsNonNumeric(t *testing.T) {
	_, ok := lineValue("fast")
	assert.False(t, ok)
	_, ok = lineValue(math.NaN())
	assert.False(t, ok)
	_, ok = lineValue(uint16(3))
	assert.True(t, ok)
}

func TestWriteSamplesParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.parquet")
	sets := []SampleSet{{
		Source: "a.fit",
		Group:  fittrack.FileTypeMonitoringB,
		Samples: []fittrack.HeartRateSample{
			{Timestamp: time.Unix(100, 0), HeartRate: 61},
			{Timestamp: time.Unix(160, 0), HeartRate: 64},
		},
	}}
	require.NoError(t, WriteSamplesParquet(path, sets))

	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(sampleParquetRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()
	require.EqualValues(t, 2, pr.GetNumRows())

	rows := make([]sampleParquetRow, 2)
	require.NoError(t, pr.Read(&rows))
	assert.Equal(t, int32(61), rows[0].HeartRate)
	assert.Equal(t, "monitoring_b", rows[1].Group)
	assert.Equal(t, int64(160), rows[1].UnixS)
}

func TestWriteMessagesJSONL(t *testing.T) {
	var buf bytes.Buffer
	msgs := []fitmsg.Message{
		fitmsg.New("file_id", map[string]any{"type": "activity"}),
		fitmsg.New("record", map[string]any{"heart_rate": uint8(70)}),
	}
	require.NoError(t, WriteMessagesJSONL(&buf, msgs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var got struct {
		Name   string `json:"name"`
		Fields map[string]struct {
			Value any `json:"value"`
		} `json:"fields"`
	}
	require.NoError(t, sonic.UnmarshalString(lines[1], &got))
	assert.Equal(t, "record", got.Name)
	assert.EqualValues(t, 70, got.Fields["heart_rate"].Value)
}

func TestWriteSamplesJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSamplesJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestMarshalSamplesParquet(t *testing.T) {
	data, err := MarshalSamplesParquet([]SampleSet{{
		Source:  "a.fit",
		Group:   fittrack.FileTypeActivity,
		Samples: []fittrack.HeartRateSample{{Timestamp: time.Unix(1, 0), HeartRate: 90}},
	}})
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Equal(t, "PAR1", string(data[len(data)-4:]))
}

func TestWriteSamplesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSamplesCSV(&buf, []fittrack.HeartRateSample{{Timestamp: time.Unix(60, 0), HeartRate: 99}}))
	assert.Equal(t, "timestamp,heart_rate\n1970-01-01T00:01:00Z,99\n", buf.String())
}
