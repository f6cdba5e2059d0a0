package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/export"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
	"github.com/lucasjlepore/fit-tracker/hrplot"
)

// Artifact names.
const (
	ManifestFile  = "manifest.json"
	MessagesFile  = "messages.jsonl"
	TrackCSVFile  = "track.csv"
	TrackLineFile = "track.line"
	SummaryFile   = "summary.json"
	SamplesJSON   = "heart_rate.json"
	PlotFile      = "heart_rate.png"
	SourceFile    = "source.fit"
)

// Run decodes one FIT file and writes every export artifact to OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.FitPath) == "" {
		return nil, fmt.Errorf("fit path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	data, err := os.ReadFile(opts.FitPath)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}

	res, err := RunBytes(BytesOptions{
		SourceFileName: filepath.Base(opts.FitPath),
		FitData:        data,
		Format:         opts.Format,
		Device:         opts.Device,
		Tags:           opts.Tags,
		Calibration:    opts.Calibration,
		CopySource:     opts.CopySource,
	})
	if err != nil {
		return nil, err
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}
	out := &Result{
		OutputDir: opts.OutDir,
		Files:     make(map[string]string, len(res.Files)),
		Warnings:  res.Warnings,
	}
	for name, content := range res.Files {
		path := filepath.Join(opts.OutDir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		out.Files[name] = path
	}
	out.ManifestPath = out.Files[ManifestFile]
	return out, nil
}

// RunBytes builds every export artifact in memory.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	if len(opts.FitData) == 0 {
		return nil, fmt.Errorf("fit data is required")
	}
	name := opts.SourceFileName
	if name == "" {
		name = "input.fit"
	}

	bundle, err := fitmsg.DecodeBytes(opts.FitData)
	if err != nil {
		return nil, err
	}
	msgs := bundle.Messages
	warnings := fitmsg.Warnings(bundle)

	extractor := fittrack.NewExtractor(opts.Calibration)
	if err := extractor.Diagnose(msgs); err != nil {
		warnings = append(warnings, err.Error())
	}
	samples := extractor.Extract(msgs)
	group := fittrack.GroupType(msgs)

	files := make(map[string][]byte)
	var buf bytes.Buffer

	if err := export.WriteMessagesJSONL(&buf, msgs); err != nil {
		return nil, fmt.Errorf("render %s: %w", MessagesFile, err)
	}
	files[MessagesFile] = cloneBytes(&buf)

	if err := export.WriteTrackCSV(&buf, msgs); err != nil {
		return nil, fmt.Errorf("render %s: %w", TrackCSVFile, err)
	}
	files[TrackCSVFile] = cloneBytes(&buf)

	if opts.Device != "" {
		err := export.WriteLineProtocol(&buf, msgs, export.LineOptions{Device: opts.Device, Tags: opts.Tags})
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", TrackLineFile, err)
		}
		files[TrackLineFile] = cloneBytes(&buf)
	}

	if err := export.WriteSamplesJSON(&buf, samples); err != nil {
		return nil, fmt.Errorf("render %s: %w", SamplesJSON, err)
	}
	files[SamplesJSON] = cloneBytes(&buf)

	sets := []export.SampleSet{{Source: name, Group: group, Samples: samples}}
	switch format {
	case "parquet":
		data, err := export.MarshalSamplesParquet(sets)
		if err != nil {
			return nil, fmt.Errorf("render heart_rate.parquet: %w", err)
		}
		files["heart_rate.parquet"] = data
	case "csv":
		if err := export.WriteSamplesCSV(&buf, samples); err != nil {
			return nil, fmt.Errorf("render heart_rate.csv: %w", err)
		}
		files["heart_rate.csv"] = cloneBytes(&buf)
	}

	summary := fittrack.Summarize(msgs, opts.Calibration, summaryTags(opts.Device, opts.Tags))
	if err := export.WriteJSON(&buf, summary); err != nil {
		return nil, fmt.Errorf("render %s: %w", SummaryFile, err)
	}
	files[SummaryFile] = cloneBytes(&buf)

	if len(samples) > 0 {
		series := hrplot.Prepare([]hrplot.Input{{Group: group, Samples: samples}}, opts.Calibration)
		title := fmt.Sprintf("%s (%s)", name, summary.DataType)
		if err := hrplot.Encode(&buf, series, title, "png", hrplot.DefaultWidth, hrplot.DefaultHeight); err != nil {
			return nil, fmt.Errorf("render %s: %w", PlotFile, err)
		}
		files[PlotFile] = cloneBytes(&buf)
	}

	if opts.CopySource {
		files[SourceFile] = append([]byte(nil), opts.FitData...)
	}

	manifest := Manifest{
		FormatVersion:    FormatVersion,
		GeneratedAt:      time.Now().UTC(),
		SourceFileName:   name,
		SourceSHA256:     bundle.SourceSHA256,
		SourceSizeBytes:  bundle.SourceSizeBytes,
		Header:           bundle.Header,
		HeaderCRC:        bundle.HeaderCRC,
		FileCRC:          bundle.FileCRC,
		FileID:           fitmsg.ProjectFileID(opts.FitData),
		FileType:         fittrack.ClassifyFile(msgs),
		Group:            group,
		ActivityType:     summary.ActivityType,
		DataType:         summary.DataType,
		DefinitionCount:  bundle.DefinitionCount,
		DataMessageCount: bundle.DataMessageCount,
		SampleCount:      len(samples),
		Warnings:         append([]string{}, warnings...),
	}
	for n := range files {
		manifest.Files = append(manifest.Files, n)
	}
	manifest.Files = append(manifest.Files, ManifestFile)
	sort.Strings(manifest.Files)

	if err := export.WriteJSON(&buf, manifest); err != nil {
		return nil, fmt.Errorf("render %s: %w", ManifestFile, err)
	}
	files[ManifestFile] = cloneBytes(&buf)

	return &BytesResult{Manifest: manifest, Files: files, Warnings: warnings}, nil
}

// cloneBytes copies and resets buf.
func cloneBytes(buf *bytes.Buffer) []byte {
	out := append([]byte(nil), buf.Bytes()...)
	buf.Reset()
	return out
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func summaryTags(device string, tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags)+1)
	for k, v := range tags {
		out[k] = v
	}
	if device != "" {
		out["device"] = device
	}
	return out
}
