package fitmsg

import "time"

// HeaderInfo stores parsed FIT header values.
type HeaderInfo struct {
	Size            uint8  `json:"size"`
	ProtocolVersion uint8  `json:"protocol_version"`
	ProfileVersion  uint16 `json:"profile_version"`
	DataSize        uint32 `json:"data_size"`
	DataType        string `json:"data_type"`
}

// CRCCheck describes CRC validation results.
type CRCCheck struct {
	Present     bool   `json:"present"`
	StoredHex   string `json:"stored_hex,omitempty"`
	ComputedHex string `json:"computed_hex,omitempty"`
	Valid       bool   `json:"valid"`
}

// FileIDInfo is a convenience projection from the file_id message.
type FileIDInfo struct {
	Type         string `json:"type"`
	Manufacturer string `json:"manufacturer"`
	Product      string `json:"product"`
	TimeCreated  string `json:"time_created,omitempty"`
	SerialNumber uint32 `json:"serial_number,omitempty"`
}

// Field is one decoded field of a data message.
//
// Raw holds the base-type value exactly as stored in the file. Value holds the
// scaled or projected value: date_time fields become time.Time and the
// file_id type enum becomes its name. Both are nil when the stored value is
// the FIT invalid sentinel for its base type.
type Field struct {
	Number uint8  `json:"number"`
	Units  string `json:"units,omitempty"`
	Raw    any    `json:"raw"`
	Value  any    `json:"value"`
}

// Message is a decoded FIT data message addressed by field name.
type Message struct {
	Name        string           `json:"name"`
	Global      uint16           `json:"global"`
	RecordIndex int              `json:"record_index"`
	FileOffset  int64            `json:"file_offset"`
	Fields      map[string]Field `json:"fields"`
}

// Bundle is the in-memory result of decoding one FIT stream.
// Messages preserve original file order.
type Bundle struct {
	Header             HeaderInfo `json:"header"`
	HeaderCRC          CRCCheck   `json:"header_crc"`
	FileCRC            CRCCheck   `json:"file_crc"`
	Messages           []Message  `json:"-"`
	DefinitionCount    int        `json:"definition_count"`
	DataMessageCount   int        `json:"data_message_count"`
	LeftoverBytesCount int64      `json:"leftover_bytes"`
	SourceSHA256       string     `json:"source_sha256"`
	SourceSizeBytes    int64      `json:"source_size_bytes"`
}

var fitEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)
