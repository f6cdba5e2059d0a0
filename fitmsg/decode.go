package fitmsg

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tormoder/fit/dyncrc16"
)

const (
	compressedHeaderMask       = 0x80
	compressedLocalMesgNumMask = 0x60
	compressedTimeMask         = 0x1F
	mesgDefinitionMask         = 0x40
	devDataMask                = 0x20
	localMesgNumMask           = 0x0F

	headerSizeNoCRC = 12
	headerSizeCRC   = 14

	timestampFieldNum = 253
)

type baseType uint8

const (
	baseEnum    baseType = 0x00
	baseSint8   baseType = 0x01
	baseUint8   baseType = 0x02
	baseSint16  baseType = 0x83
	baseUint16  baseType = 0x84
	baseSint32  baseType = 0x85
	baseUint32  baseType = 0x86
	baseString  baseType = 0x07
	baseFloat32 baseType = 0x88
	baseFloat64 baseType = 0x89
	baseUint8z  baseType = 0x0A
	baseUint16z baseType = 0x8B
	baseUint32z baseType = 0x8C
	baseByte    baseType = 0x0D
	baseSint64  baseType = 0x8E
	baseUint64  baseType = 0x8F
	baseUint64z baseType = 0x90
)

var baseSizes = map[baseType]int{
	baseEnum:    1,
	baseSint8:   1,
	baseUint8:   1,
	baseSint16:  2,
	baseUint16:  2,
	baseSint32:  4,
	baseUint32:  4,
	baseString:  1,
	baseFloat32: 4,
	baseFloat64: 8,
	baseUint8z:  1,
	baseUint16z: 2,
	baseUint32z: 4,
	baseByte:    1,
	baseSint64:  8,
	baseUint64:  8,
	baseUint64z: 8,
}

type fieldDef struct {
	number uint8
	size   uint8
	base   baseType
}

type localDefinition struct {
	global    uint16
	arch      binary.ByteOrder
	fields    []fieldDef
	devFields []uint8 // sizes only; developer payloads are skipped
}

type decodeState struct {
	dataOffset     int
	data           []byte
	definitions    map[uint8]localDefinition
	lastTimestamp  uint32
	lastTimeOffset int32
	messages       []Message
	definitionsN   int
}

type decodeOutput struct {
	Header             HeaderInfo
	HeaderCRC          CRCCheck
	FileCRC            CRCCheck
	Messages           []Message
	DefinitionCount    int
	LeftoverBytesCount int64
}

func decodeBytes(data []byte) (*decodeOutput, error) {
	if len(data) < headerSizeNoCRC+2 {
		return nil, fmt.Errorf("fit file too short: %d bytes", len(data))
	}

	header, headerCRC, dataStart, dataSize, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	required := int(dataStart) + int(dataSize) + 2
	if len(data) < required {
		return nil, fmt.Errorf("fit file truncated: have %d bytes, need at least %d", len(data), required)
	}

	storedFileCRC := binary.LittleEndian.Uint16(data[dataStart+dataSize : dataStart+dataSize+2])
	computedFileCRC := dyncrc16.Checksum(data[:dataStart+dataSize])
	fileCRC := CRCCheck{
		Present:     true,
		StoredHex:   fmt.Sprintf("0x%04X", storedFileCRC),
		ComputedHex: fmt.Sprintf("0x%04X", computedFileCRC),
		Valid:       storedFileCRC == computedFileCRC,
	}

	ds := &decodeState{
		dataOffset:  int(dataStart),
		data:        data[dataStart : dataStart+dataSize],
		definitions: make(map[uint8]localDefinition),
	}
	if err := ds.walk(); err != nil {
		return nil, err
	}

	return &decodeOutput{
		Header:             header,
		HeaderCRC:          headerCRC,
		FileCRC:            fileCRC,
		Messages:           ds.messages,
		DefinitionCount:    ds.definitionsN,
		LeftoverBytesCount: int64(len(data) - required),
	}, nil
}

func parseHeader(data []byte) (HeaderInfo, CRCCheck, uint32, uint32, error) {
	size := data[0]
	if size != headerSizeNoCRC && size != headerSizeCRC {
		return HeaderInfo{}, CRCCheck{}, 0, 0, fmt.Errorf("invalid fit header size: %d", size)
	}
	if len(data) < int(size) {
		return HeaderInfo{}, CRCCheck{}, 0, 0, fmt.Errorf("truncated fit header: need %d bytes", size)
	}

	h := HeaderInfo{
		Size:            size,
		ProtocolVersion: data[1],
		ProfileVersion:  binary.LittleEndian.Uint16(data[2:4]),
		DataSize:        binary.LittleEndian.Uint32(data[4:8]),
		DataType:        string(data[8:12]),
	}
	if h.DataType != ".FIT" {
		return HeaderInfo{}, CRCCheck{}, 0, 0, fmt.Errorf("invalid fit data type in header: %q", h.DataType)
	}

	headerCRC := CRCCheck{
		Present: size == headerSizeCRC,
		Valid:   true,
	}
	if size == headerSizeCRC {
		stored := binary.LittleEndian.Uint16(data[12:14])
		headerCRC.StoredHex = fmt.Sprintf("0x%04X", stored)
		if stored != 0 {
			computed := dyncrc16.Checksum(data[:12])
			headerCRC.ComputedHex = fmt.Sprintf("0x%04X", computed)
			headerCRC.Valid = stored == computed
		}
	}

	return h, headerCRC, uint32(size), h.DataSize, nil
}

func (ds *decodeState) walk() error {
	pos := 0
	recordIndex := 0
	for pos < len(ds.data) {
		recordIndex++
		start := pos
		headerByte := ds.data[pos]
		pos++

		var err error
		switch {
		case (headerByte & compressedHeaderMask) == compressedHeaderMask:
			local := (headerByte & compressedLocalMesgNumMask) >> 5
			def, ok := ds.definitions[local]
			if !ok {
				return fmt.Errorf("missing definition for compressed data message local=%d record=%d", local, recordIndex)
			}
			pos, err = ds.readData(recordIndex, start, pos, headerByte, def, true)
		case (headerByte & mesgDefinitionMask) == mesgDefinitionMask:
			pos, err = ds.readDefinition(recordIndex, start, pos, headerByte)
		default:
			local := headerByte & localMesgNumMask
			def, ok := ds.definitions[local]
			if !ok {
				return fmt.Errorf("missing definition for data message local=%d record=%d", local, recordIndex)
			}
			pos, err = ds.readData(recordIndex, start, pos, headerByte, def, false)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (ds *decodeState) readDefinition(recordIndex, startOffset, pos int, headerByte uint8) (int, error) {
	read := func(n int) ([]byte, error) {
		if pos+n > len(ds.data) {
			return nil, fmt.Errorf("definition record truncated at byte %d", ds.dataOffset+startOffset)
		}
		out := ds.data[pos : pos+n]
		pos += n
		return out, nil
	}

	fixed, err := read(5) // reserved, architecture, global (2), field count
	if err != nil {
		return 0, err
	}
	var arch binary.ByteOrder
	switch fixed[1] {
	case 0:
		arch = binary.LittleEndian
	case 1:
		arch = binary.BigEndian
	default:
		return 0, fmt.Errorf("invalid architecture byte %d at record %d", fixed[1], recordIndex)
	}

	def := localDefinition{
		global: arch.Uint16(fixed[2:4]),
		arch:   arch,
		fields: make([]fieldDef, 0, int(fixed[4])),
	}
	for i := 0; i < int(fixed[4]); i++ {
		raw, err := read(3)
		if err != nil {
			return 0, err
		}
		def.fields = append(def.fields, fieldDef{
			number: raw[0],
			size:   raw[1],
			base:   decompressBaseType(raw[2]),
		})
	}

	if (headerByte & devDataMask) == devDataMask {
		countRaw, err := read(1)
		if err != nil {
			return 0, err
		}
		for i := 0; i < int(countRaw[0]); i++ {
			raw, err := read(3)
			if err != nil {
				return 0, err
			}
			def.devFields = append(def.devFields, raw[1])
		}
	}

	ds.definitions[headerByte&localMesgNumMask] = def
	ds.definitionsN++
	return pos, nil
}

func (ds *decodeState) readData(recordIndex, startOffset, pos int, headerByte uint8, def localDefinition, compressed bool) (int, error) {
	read := func(n int) ([]byte, error) {
		if pos+n > len(ds.data) {
			return nil, fmt.Errorf("data record truncated at byte %d", ds.dataOffset+startOffset)
		}
		out := ds.data[pos : pos+n]
		pos += n
		return out, nil
	}

	msg := Message{
		Name:        messageName(def.global),
		Global:      def.global,
		RecordIndex: recordIndex,
		FileOffset:  int64(ds.dataOffset + startOffset),
		Fields:      make(map[string]Field, len(def.fields)+1),
	}

	var compressedTS uint32
	if compressed && ds.lastTimestamp != 0 {
		timeOffset := int32(headerByte & compressedTimeMask)
		ds.lastTimestamp += uint32((timeOffset - ds.lastTimeOffset) & int32(compressedTimeMask))
		ds.lastTimeOffset = timeOffset
		compressedTS = ds.lastTimestamp
	}

	for _, fd := range def.fields {
		raw, err := read(int(fd.size))
		if err != nil {
			return 0, err
		}
		decoded, invalid := decodeField(raw, fd.base, def.arch)
		if fd.number == timestampFieldNum && !invalid {
			if ts, ok := asUint32(decoded); ok {
				ds.lastTimestamp = ts
				ds.lastTimeOffset = int32(ts & compressedTimeMask)
			}
		}
		sem := semanticForField(def.global, fd.number)
		field := Field{Number: fd.number, Units: sem.units}
		if !invalid {
			field.Raw = decoded
			field.Value = sem.project(decoded)
		}
		msg.Fields[sem.name] = field
	}

	for _, size := range def.devFields {
		if _, err := read(int(size)); err != nil {
			return 0, err
		}
	}

	if compressedTS != 0 {
		if _, ok := msg.Fields["timestamp"]; !ok {
			msg.Fields["timestamp"] = Field{
				Number: timestampFieldNum,
				Units:  "s",
				Raw:    compressedTS,
				Value:  fitTime(compressedTS),
			}
		}
	}

	ds.messages = append(ds.messages, msg)
	return pos, nil
}

// decodeField returns the decoded value and whether every element is the
// invalid sentinel for its base type.
func decodeField(raw []byte, bt baseType, arch binary.ByteOrder) (any, bool) {
	switch bt {
	case baseString:
		str := decodeNullTerminatedString(raw)
		return str, len(str) == 0
	case baseByte:
		return append([]byte(nil), raw...), allBytes(raw, 0xFF)
	}

	size, ok := baseSizes[bt]
	if !ok || len(raw)%size != 0 {
		return append([]byte(nil), raw...), false
	}

	count := len(raw) / size
	if count == 1 {
		return decodeSingleValue(raw, bt, arch)
	}
	values := make([]any, 0, count)
	invalidCount := 0
	for i := 0; i < count; i++ {
		v, invalid := decodeSingleValue(raw[i*size:(i+1)*size], bt, arch)
		values = append(values, v)
		if invalid {
			invalidCount++
		}
	}
	return values, invalidCount == count
}

func decodeSingleValue(raw []byte, bt baseType, arch binary.ByteOrder) (any, bool) {
	switch bt {
	case baseEnum:
		v := raw[0]
		return v, v == 0xFF
	case baseSint8:
		v := int8(raw[0])
		return v, v == int8(0x7F)
	case baseUint8:
		v := raw[0]
		return v, v == 0xFF
	case baseSint16:
		v := int16(arch.Uint16(raw))
		return v, v == int16(0x7FFF)
	case baseUint16:
		v := arch.Uint16(raw)
		return v, v == 0xFFFF
	case baseSint32:
		v := int32(arch.Uint32(raw))
		return v, v == int32(0x7FFFFFFF)
	case baseUint32:
		v := arch.Uint32(raw)
		return v, v == 0xFFFFFFFF
	case baseFloat32:
		bits := arch.Uint32(raw)
		return float64(math.Float32frombits(bits)), bits == 0xFFFFFFFF
	case baseFloat64:
		bits := arch.Uint64(raw)
		return math.Float64frombits(bits), bits == 0xFFFFFFFFFFFFFFFF
	case baseUint8z:
		v := raw[0]
		return v, v == 0x00
	case baseUint16z:
		v := arch.Uint16(raw)
		return v, v == 0x0000
	case baseUint32z:
		v := arch.Uint32(raw)
		return v, v == 0x00000000
	case baseSint64:
		v := int64(arch.Uint64(raw))
		return v, v == int64(0x7FFFFFFFFFFFFFFF)
	case baseUint64:
		v := arch.Uint64(raw)
		return v, v == 0xFFFFFFFFFFFFFFFF
	case baseUint64z:
		v := arch.Uint64(raw)
		return v, v == 0
	default:
		return append([]byte(nil), raw...), false
	}
}

func asUint32(v any) (uint32, bool) {
	switch x := v.(type) {
	case uint32:
		return x, x != 0xFFFFFFFF
	case []any:
		if len(x) > 0 {
			if y, ok := x[0].(uint32); ok && y != 0xFFFFFFFF {
				return y, true
			}
		}
	}
	return 0, false
}

func decodeNullTerminatedString(raw []byte) string {
	for i := 0; i < len(raw); i++ {
		if raw[i] == 0x00 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

func allBytes(raw []byte, value byte) bool {
	if len(raw) == 0 {
		return false
	}
	for _, b := range raw {
		if b != value {
			return false
		}
	}
	return true
}

func decompressBaseType(b byte) baseType {
	switch b & 0x1F {
	case 0x03:
		return baseSint16
	case 0x04:
		return baseUint16
	case 0x05:
		return baseSint32
	case 0x06:
		return baseUint32
	case 0x08:
		return baseFloat32
	case 0x09:
		return baseFloat64
	case 0x0B:
		return baseUint16z
	case 0x0C:
		return baseUint32z
	case 0x0E:
		return baseSint64
	case 0x0F:
		return baseUint64
	case 0x10:
		return baseUint64z
	default:
		return baseType(b & 0x1F)
	}
}
