package pipeline

import (
	"time"

	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
)

// FormatVersion identifies the layout of an export directory.
const FormatVersion = "fittrack-export/v1"

// Options configures Run.
type Options struct {
	FitPath     string
	OutDir      string
	Format      string // parquet|csv
	Device      string
	Tags        map[string]string
	Calibration fittrack.Calibration
	Overwrite   bool
	CopySource  bool
}

// BytesOptions configures RunBytes.
type BytesOptions struct {
	SourceFileName string
	FitData        []byte
	Format         string // parquet|csv
	Device         string
	Tags           map[string]string
	Calibration    fittrack.Calibration
	CopySource     bool
}

// Result returns generated output paths.
type Result struct {
	OutputDir    string            `json:"output_dir"`
	ManifestPath string            `json:"manifest_path"`
	Files        map[string]string `json:"files"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// BytesResult holds generated artifacts keyed by file name.
type BytesResult struct {
	Manifest Manifest
	Files    map[string][]byte
	Warnings []string
}

// Manifest describes one export.
type Manifest struct {
	FormatVersion    string             `json:"format_version"`
	GeneratedAt      time.Time          `json:"generated_at"`
	SourceFileName   string             `json:"source_file_name"`
	SourceSHA256     string             `json:"source_sha256"`
	SourceSizeBytes  int64              `json:"source_size_bytes"`
	Header           fitmsg.HeaderInfo  `json:"header"`
	HeaderCRC        fitmsg.CRCCheck    `json:"header_crc"`
	FileCRC          fitmsg.CRCCheck    `json:"file_crc"`
	FileID           *fitmsg.FileIDInfo `json:"file_id,omitempty"`
	FileType         fittrack.FileType  `json:"file_type"`
	Group            fittrack.FileType  `json:"group"`
	ActivityType     string             `json:"activity_type"`
	DataType         string             `json:"data_type"`
	DefinitionCount  int                `json:"definition_count"`
	DataMessageCount int                `json:"data_message_count"`
	SampleCount      int                `json:"sample_count"`
	Warnings         []string           `json:"warnings"`
	Files            []string           `json:"files"`
}
