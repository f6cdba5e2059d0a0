//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/pipeline"
)

func main() {
	js.Global().Set("exportFit", js.FuncOf(exportFit))
	select {}
}

func fail(msg string) map[string]any {
	return map[string]any{"ok": false, "error": msg}
}

// exportFit(fileBytes Uint8Array, options object) returns the export bundle
// as a zip plus the manifest summary fields.
func exportFit(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := js.Undefined()
	if len(args) > 1 {
		optsArg = args[1]
	}
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return fail("fit file bytes are required")
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return fail("failed to read FIT bytes from JS input")
	}

	cal := fittrack.DefaultCalibration()
	if d, ok := getDuration(optsArg, "monitoring_offset"); ok {
		cal.MonitoringOffset = d
	}
	if d, ok := getDuration(optsArg, "display_offset"); ok {
		cal.DisplayOffset = d
	}

	result, err := pipeline.RunBytes(pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "input.fit"),
		FitData:        fileBytes,
		Format:         getString(optsArg, "format", "parquet"),
		Device:         getString(optsArg, "device", ""),
		Calibration:    cal,
		CopySource:     true,
	})
	if err != nil {
		return fail(err.Error())
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return fail(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	return map[string]any{
		"ok":           true,
		"zip":          payload,
		"file_type":    string(result.Manifest.FileType),
		"data_type":    result.Manifest.DataType,
		"sample_count": result.Manifest.SampleCount,
		"warnings":     stringsToAny(result.Warnings),
		"files":        stringsToAny(result.Manifest.Files),
	}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		h := &zip.FileHeader{Name: name, Method: zip.Deflate}
		h.SetModTime(time.Unix(0, 0).UTC())
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeString {
		return fallback
	}
	if s := out.String(); s != "" {
		return s
	}
	return fallback
}

// getDuration reads a Go duration string such as "5h30m".
func getDuration(v js.Value, key string) (time.Duration, bool) {
	s := getString(v, key, "")
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	return d, err == nil
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
