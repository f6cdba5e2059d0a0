// Package ingest decodes FIT files and archives their heart-rate samples.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
	"github.com/lucasjlepore/fit-tracker/store"
	"github.com/sirupsen/logrus"
)

// Importer loads FIT files into a store.
type Importer struct {
	Store       *store.Store
	Calibration fittrack.Calibration
	Device      string
	Log         logrus.FieldLogger
}

// FileResult is the outcome of importing one file.
type FileResult struct {
	Path     string
	Group    fittrack.FileType
	Samples  int
	Inserted int
	Err      error
}

// Result is the outcome of one import batch.
type Result struct {
	ImportID string
	Files    []FileResult
}

// Failed returns the paths that could not be imported.
func (r *Result) Failed() []string {
	var out []string
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f.Path)
		}
	}
	return out
}

// Load decodes one file and extracts its samples without storing them.
func Load(path string, cal fittrack.Calibration) (fittrack.FileType, []fittrack.HeartRateSample, error) {
	bundle, err := fitmsg.DecodeFile(path)
	if err != nil {
		return fittrack.FileTypeUnknown, nil, err
	}
	return fittrack.GroupType(bundle.Messages), fittrack.NewExtractor(cal).Extract(bundle.Messages), nil
}

// ImportFiles imports paths as one batch. Per-file failures are recorded in
// the result and logged; the returned error covers only batch bookkeeping
// and cancellation.
func (im *Importer) ImportFiles(ctx context.Context, paths []string) (*Result, error) {
	id, err := im.Store.BeginImport(ctx, im.Device)
	if err != nil {
		return nil, err
	}
	res := &Result{ImportID: id}

	var imported []string
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fr := im.importFile(ctx, id, path)
		res.Files = append(res.Files, fr)
		if fr.Err == nil {
			imported = append(imported, path)
		}
	}

	if err := im.Store.FinishImport(ctx, id, imported, res.Failed()); err != nil {
		return res, err
	}
	return res, nil
}

func (im *Importer) importFile(ctx context.Context, importID, path string) FileResult {
	fr := FileResult{Path: path}
	log := im.logger().WithField("file", filepath.Base(path))

	bundle, err := fitmsg.DecodeFile(path)
	if err != nil {
		fr.Err = err
		log.WithError(err).Warn("decode failed")
		return fr
	}
	for _, w := range fitmsg.Warnings(bundle) {
		log.Warn(w)
	}

	extractor := fittrack.NewExtractor(im.Calibration)
	if err := extractor.Diagnose(bundle.Messages); err != nil {
		log.WithError(err).Debug("heart rate data incomplete")
	}

	fr.Group = fittrack.GroupType(bundle.Messages)
	samples := extractor.Extract(bundle.Messages)
	fr.Samples = len(samples)

	fr.Inserted, err = im.Store.SaveSamples(ctx, importID, path, fr.Group, samples)
	if err != nil {
		fr.Err = fmt.Errorf("archive %s: %w", path, err)
		log.WithError(err).Error("archive failed")
		return fr
	}
	log.WithFields(logrus.Fields{
		"group":    fr.Group,
		"samples":  fr.Samples,
		"inserted": fr.Inserted,
	}).Info("imported")
	return fr
}

func (im *Importer) logger() logrus.FieldLogger {
	if im.Log != nil {
		return im.Log
	}
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
