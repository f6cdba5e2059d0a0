package fitmsg

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tormoder/fit"
)

// DecodeBytes decodes raw FIT bytes into an ordered message bundle.
func DecodeBytes(data []byte) (*Bundle, error) {
	out, err := decodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode fit bytes: %w", err)
	}
	sum := sha256.Sum256(data)
	return &Bundle{
		Header:             out.Header,
		HeaderCRC:          out.HeaderCRC,
		FileCRC:            out.FileCRC,
		Messages:           out.Messages,
		DefinitionCount:    out.DefinitionCount,
		DataMessageCount:   len(out.Messages),
		LeftoverBytesCount: out.LeftoverBytesCount,
		SourceSHA256:       hex.EncodeToString(sum[:]),
		SourceSizeBytes:    int64(len(data)),
	}, nil
}

// Decode reads a FIT stream and returns its data messages in file order.
func Decode(r io.Reader) ([]Message, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read fit stream: %w", err)
	}
	bundle, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return bundle.Messages, nil
}

// DecodeFile decodes the FIT file at path.
func DecodeFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	return DecodeBytes(data)
}

// ProjectFileID returns the file_id projection directly from bytes.
func ProjectFileID(data []byte) *FileIDInfo {
	_, id, err := fit.DecodeHeaderAndFileID(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	info := &FileIDInfo{
		Type:         fmt.Sprint(id.Type),
		Manufacturer: fmt.Sprint(id.Manufacturer),
		Product:      fmt.Sprint(id.GetProduct()),
		SerialNumber: id.SerialNumber,
	}
	if !id.TimeCreated.IsZero() {
		info.TimeCreated = id.TimeCreated.UTC().Format(time.RFC3339)
	}
	return info
}

// Warnings returns deterministic decode-quality notes for a bundle.
func Warnings(b *Bundle) []string {
	if b == nil {
		return nil
	}
	warnings := make([]string, 0, 3)
	if b.HeaderCRC.Present && !b.HeaderCRC.Valid {
		warnings = append(warnings, "header CRC mismatch")
	}
	if b.FileCRC.Present && !b.FileCRC.Valid {
		warnings = append(warnings, "file CRC mismatch")
	}
	if b.LeftoverBytesCount > 0 {
		warnings = append(warnings, fmt.Sprintf("leftover trailing bytes detected: %d", b.LeftoverBytesCount))
	}
	return warnings
}
