package fitmsg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/lucasjlepore/fit-tracker/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"
)

var testStart = time.Date(2026, 2, 26, 23, 0, 0, 0, time.UTC)

func TestDecodeBytesActivity(t *testing.T) {
	data := buildTestFIT(t)

	bundle, err := DecodeBytes(data)
	require.NoError(t, err)

	assert.Equal(t, ".FIT", bundle.Header.DataType)
	assert.True(t, bundle.FileCRC.Valid)
	assert.True(t, bundle.HeaderCRC.Valid)
	assert.NotZero(t, bundle.DefinitionCount)
	assert.Equal(t, len(bundle.Messages), bundle.DataMessageCount)
	assert.Empty(t, Warnings(bundle))

	byName := make(map[string][]Message)
	for _, m := range bundle.Messages {
		byName[m.Name] = append(byName[m.Name], m)
	}

	require.NotEmpty(t, byName["file_id"])
	fileType, ok := byName["file_id"][0].Text("type")
	require.True(t, ok)
	assert.Equal(t, "activity", fileType)

	require.NotEmpty(t, byName["device_info"])
	deviceTS, ok := byName["device_info"][0].Time("timestamp")
	require.True(t, ok)
	assert.True(t, deviceTS.Equal(testStart))

	records := byName["record"]
	require.Len(t, records, 2)

	hr, ok := records[0].Int("heart_rate")
	require.True(t, ok)
	assert.EqualValues(t, 135, hr)

	ts, ok := records[0].Time("timestamp")
	require.True(t, ok)
	assert.True(t, ts.Equal(testStart.Add(30*time.Second)))

	raw, ok := records[0].RawValue("timestamp")
	require.True(t, ok)
	assert.Equal(t, uint32(testStart.Add(30*time.Second).Unix()-fitEpoch.Unix()), raw)

	_, ok = records[1].Get("heart_rate")
	assert.False(t, ok, "invalid sentinel heart rate must decode as absent")
}

func TestDecodeBytesMonitoring(t *testing.T) {
	base := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	data := fixture.Monitoring(t, base, fixture.MonitoringSample{Timestamp16: 50, HeartRate: 61})

	bundle, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.True(t, bundle.FileCRC.Valid)
	assert.True(t, bundle.HeaderCRC.Valid)
	require.Len(t, bundle.Messages, 3)

	fileID, info, sample := bundle.Messages[0], bundle.Messages[1], bundle.Messages[2]
	fileType, ok := fileID.Text("type")
	require.True(t, ok)
	assert.Equal(t, "monitoring_b", fileType)

	assert.Equal(t, "monitoring_info", info.Name)
	ts, ok := info.Time("timestamp")
	require.True(t, ok)
	assert.True(t, ts.Equal(base))
	local, ok := info.Time("local_timestamp")
	require.True(t, ok)
	assert.True(t, local.Equal(base.Add(fixture.LocalOffset)))

	assert.Equal(t, "monitoring", sample.Name)
	assert.Equal(t, uint16(50), sample.Fields["timestamp_16"].Value)
	assert.EqualValues(t, 26, sample.Fields["timestamp_16"].Number)
	hr, ok := sample.Int("heart_rate")
	require.True(t, ok)
	assert.EqualValues(t, 61, hr)
	assert.False(t, sample.Has("timestamp"))
}

func TestDecodeBytesSportName(t *testing.T) {
	data := fixture.SportActivity(t, "All-Day Tracking", testStart, 70)

	bundle, err := DecodeBytes(data)
	require.NoError(t, err)

	var names []string
	for _, m := range bundle.Messages {
		if m.Name == "sport" {
			name, ok := m.Text("name")
			require.True(t, ok)
			names = append(names, name)
		}
	}
	assert.Equal(t, []string{"All-Day Tracking"}, names)
}

func TestDecodeReaderMatchesBytes(t *testing.T) {
	data := buildTestFIT(t)

	msgs, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bundle, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, bundle.Messages, msgs)
}

func TestDecodeBytesFileCRCMismatch(t *testing.T) {
	data := buildTestFIT(t)
	data[len(data)-1] ^= 0xFF

	bundle, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.False(t, bundle.FileCRC.Valid)
	assert.Contains(t, Warnings(bundle), "file CRC mismatch")
}

func TestDecodeBytesRejectsInvalidInput(t *testing.T) {
	_, err := DecodeBytes([]byte{0x0E, 0x10})
	assert.ErrorContains(t, err, "too short")

	data := buildTestFIT(t)
	data[8] = 'X'
	_, err = DecodeBytes(data)
	assert.ErrorContains(t, err, "invalid fit data type")

	data = buildTestFIT(t)
	_, err = DecodeBytes(data[:len(data)-10])
	assert.ErrorContains(t, err, "truncated")
}

func TestProjectFileID(t *testing.T) {
	info := ProjectFileID(buildTestFIT(t))
	require.NotNil(t, info)
	assert.Equal(t, fmt.Sprint(fit.FileTypeActivity), info.Type)

	assert.Nil(t, ProjectFileID([]byte("not a fit file")))
}

func TestMessageName(t *testing.T) {
	assert.Equal(t, "monitoring_info", messageName(103))
	assert.Equal(t, "record", messageName(20))
	assert.Equal(t, "global_65000", messageName(65000))
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"FileId":          "file_id",
		"MonitoringB":     "monitoring_b",
		"MonitoringInfo":  "monitoring_info",
		"HrvValue":        "hrv_value",
		"OhrSettings":     "ohr_settings",
		"Activity":        "activity",
		"ExdScreenConfig": "exd_screen_config",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

func TestScaleFileType(t *testing.T) {
	v, ok := scaleFileType(uint8(32))
	require.True(t, ok)
	assert.Equal(t, "monitoring_b", v)

	v, ok = scaleFileType(uint8(4))
	require.True(t, ok)
	assert.Equal(t, "activity", v)

	_, ok = scaleFileType("activity")
	assert.False(t, ok)
}

func buildTestFIT(t *testing.T) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)

	activity, err := file.Activity()
	require.NoError(t, err)

	device := fit.NewDeviceInfoMsg()
	device.Timestamp = testStart
	activity.DeviceInfos = append(activity.DeviceInfos, device)

	record := fit.NewRecordMsg()
	record.Timestamp = testStart.Add(30 * time.Second)
	record.HeartRate = 135
	record.Cadence = 92
	activity.Records = append(activity.Records, record)

	noHR := fit.NewRecordMsg()
	noHR.Timestamp = testStart.Add(31 * time.Second)
	noHR.Cadence = 90
	activity.Records = append(activity.Records, noHR)

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}
