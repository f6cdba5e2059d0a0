// Package fixture builds small FIT files for tests.
package fixture

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"
)

// Activity encodes an activity file anchored at start with one record per
// heart rate, one second apart. A zero heart rate is written as invalid.
func Activity(t testing.TB, start time.Time, heartRates ...uint8) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)

	activity, err := file.Activity()
	require.NoError(t, err)

	device := fit.NewDeviceInfoMsg()
	device.Timestamp = start
	activity.DeviceInfos = append(activity.DeviceInfos, device)

	for i, hr := range heartRates {
		record := fit.NewRecordMsg()
		record.Timestamp = start.Add(time.Duration(i+1) * time.Second)
		if hr > 0 {
			record.HeartRate = hr
		}
		activity.Records = append(activity.Records, record)
	}

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

// WriteActivity writes an activity fixture named name under dir and returns
// its path.
func WriteActivity(t testing.TB, dir, name string, start time.Time, heartRates ...uint8) string {
	t.Helper()
	return Write(t, dir, name, Activity(t, start, heartRates...))
}

// Write stores data as name under dir and returns its path.
func Write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
