package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lucasjlepore/fit-tracker/pipeline"
	"github.com/spf13/cobra"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		outDir     string
		format     string
		device     string
		tags       map[string]string
		overwrite  bool
		copySource bool
	)
	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Write every export artifact for one fit file into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				base := filepath.Base(args[0])
				outDir = strings.TrimSuffix(base, filepath.Ext(base)) + "_export"
			}
			if device == "" {
				device = a.cfg.Device
			}
			merged := make(map[string]string, len(a.cfg.LineTags)+len(tags))
			for k, v := range a.cfg.LineTags {
				merged[k] = v
			}
			for k, v := range tags {
				merged[k] = v
			}

			res, err := pipeline.Run(pipeline.Options{
				FitPath:     args[0],
				OutDir:      outDir,
				Format:      format,
				Device:      device,
				Tags:        merged,
				Calibration: a.cfg.Calibration,
				Overwrite:   overwrite,
				CopySource:  copySource,
			})
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				a.log.WithField("file", args[0]).Warn(w)
			}

			names := make([]string, 0, len(res.Files))
			for name := range res.Files {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintf(cmd.OutOrStdout(), "Export complete: %s\n", res.OutputDir)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", res.Files[name])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default <name>_export)")
	cmd.Flags().StringVar(&format, "format", "parquet", "Sample table format (parquet, csv)")
	cmd.Flags().StringVar(&device, "device", "", "Device tag; track.line is written only when set")
	cmd.Flags().StringToStringVar(&tags, "tag", nil, "Extra line protocol tags as key=value")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow writing into a non-empty directory")
	cmd.Flags().BoolVar(&copySource, "copy-source", false, "Copy the source file into the export")
	return cmd
}
