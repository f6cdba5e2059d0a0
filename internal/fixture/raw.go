package fixture

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/tormoder/fit/dyncrc16"
)

// fitEpoch is the zero point of FIT timestamps.
var fitEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

const (
	mesgFileID         = 0
	mesgSport          = 12
	mesgRecord         = 20
	mesgDeviceInfo     = 23
	mesgMonitoring     = 55
	mesgMonitoringInfo = 103

	fileTypeActivity    = 4
	fileTypeMonitoringB = 32

	baseEnum   = 0x00
	baseUint8  = 0x02
	baseUint16 = 0x84
	baseUint32 = 0x86
	baseString = 0x07

	fieldTimestamp = 253
)

type rawField struct {
	num  uint8
	base uint8
	data []byte
}

func u8(num uint8, v uint8) rawField {
	return rawField{num: num, base: baseUint8, data: []byte{v}}
}

func enum(num uint8, v uint8) rawField {
	return rawField{num: num, base: baseEnum, data: []byte{v}}
}

func u16(num uint8, v uint16) rawField {
	return rawField{num: num, base: baseUint16, data: binary.LittleEndian.AppendUint16(nil, v)}
}

func u32(num uint8, v uint32) rawField {
	return rawField{num: num, base: baseUint32, data: binary.LittleEndian.AppendUint32(nil, v)}
}

func stamp(num uint8, t time.Time) rawField {
	return u32(num, uint32(t.Unix()-fitEpoch.Unix()))
}

func str(num uint8, s string, size int) rawField {
	data := make([]byte, size)
	copy(data, s)
	return rawField{num: num, base: baseString, data: data}
}

// rawFile encodes FIT records by hand for messages and fields the typed
// encoder does not expose. Every message is written with its own
// definition on local type 0, little endian.
type rawFile struct {
	body bytes.Buffer
}

func (f *rawFile) message(global uint16, fields ...rawField) {
	f.body.WriteByte(0x40)
	f.body.WriteByte(0)
	f.body.WriteByte(0)
	f.body.Write(binary.LittleEndian.AppendUint16(nil, global))
	f.body.WriteByte(uint8(len(fields)))
	for _, fd := range fields {
		f.body.Write([]byte{fd.num, uint8(len(fd.data)), fd.base})
	}

	f.body.WriteByte(0x00)
	for _, fd := range fields {
		f.body.Write(fd.data)
	}
}

func (f *rawFile) bytes(t testing.TB) []byte {
	t.Helper()

	header := make([]byte, 14)
	header[0] = 14
	header[1] = 0x20
	binary.LittleEndian.PutUint16(header[2:4], 2132)
	binary.LittleEndian.PutUint32(header[4:8], uint32(f.body.Len()))
	copy(header[8:12], ".FIT")
	binary.LittleEndian.PutUint16(header[12:14], dyncrc16.Checksum(header[:12]))

	out := append(header, f.body.Bytes()...)
	return binary.LittleEndian.AppendUint16(out, dyncrc16.Checksum(out))
}

// LocalOffset is the gap between local_timestamp and timestamp in
// monitoring fixtures.
const LocalOffset = 9 * time.Hour

// MonitoringSample is one heart rate reading in a monitoring_b fixture.
type MonitoringSample struct {
	Timestamp16 uint16
	HeartRate   uint8
}

// Monitoring encodes a monitoring_b file. Its monitoring_info message
// carries base as timestamp and base plus LocalOffset as local_timestamp;
// each sample becomes a monitoring message with timestamp_16 and
// heart_rate only.
func Monitoring(t testing.TB, base time.Time, samples ...MonitoringSample) []byte {
	t.Helper()

	var f rawFile
	f.message(mesgFileID, enum(0, fileTypeMonitoringB))
	f.message(mesgMonitoringInfo, stamp(fieldTimestamp, base), stamp(0, base.Add(LocalOffset)))
	for _, s := range samples {
		f.message(mesgMonitoring, u16(26, s.Timestamp16), u8(27, s.HeartRate))
	}
	return f.bytes(t)
}

// SportActivity encodes an activity file with a sport message named sport,
// a device_info anchor at start and one record per heart rate, one second
// apart.
func SportActivity(t testing.TB, sport string, start time.Time, heartRates ...uint8) []byte {
	t.Helper()

	var f rawFile
	f.message(mesgFileID, enum(0, fileTypeActivity))
	f.message(mesgSport, enum(0, 0), str(3, sport, len(sport)+1))
	f.message(mesgDeviceInfo, stamp(fieldTimestamp, start))
	for i, hr := range heartRates {
		f.message(mesgRecord, stamp(fieldTimestamp, start.Add(time.Duration(i+1)*time.Second)), u8(3, hr))
	}
	return f.bytes(t)
}
