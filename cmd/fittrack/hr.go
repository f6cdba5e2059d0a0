package main

import (
	"fmt"

	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/export"
	"github.com/spf13/cobra"
)

func newHRCommand(a *app) *cobra.Command {
	var (
		sorted      bool
		parquetPath string
	)
	cmd := &cobra.Command{
		Use:   "hr PATH...",
		Short: "Print heart rate samples as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor := fittrack.NewExtractor(a.cfg.Calibration)
			var (
				all  []fittrack.HeartRateSample
				sets []export.SampleSet
			)
			for _, path := range args {
				bundle, err := a.decode(path)
				if err != nil {
					return err
				}
				if err := extractor.Diagnose(bundle.Messages); err != nil {
					a.log.WithField("file", path).WithError(err).Warn("incomplete heart rate data")
				}
				samples := extractor.Extract(bundle.Messages)
				all = append(all, samples...)
				sets = append(sets, export.SampleSet{
					Source:  path,
					Group:   fittrack.GroupType(bundle.Messages),
					Samples: samples,
				})
			}
			if sorted {
				fittrack.SortSamples(all)
			}
			if parquetPath != "" {
				if err := export.WriteSamplesParquet(parquetPath, sets); err != nil {
					return fmt.Errorf("write parquet: %w", err)
				}
				a.log.WithField("path", parquetPath).Info("wrote parquet")
				return nil
			}
			return export.WriteSamplesJSON(cmd.OutOrStdout(), all)
		},
	}
	cmd.Flags().BoolVar(&sorted, "sort", false, "Sort samples by time")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Write samples to this parquet file instead of stdout")
	return cmd
}
