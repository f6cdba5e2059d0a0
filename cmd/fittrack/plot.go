package main

import (
	"fmt"
	"time"

	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/hrplot"
	"github.com/lucasjlepore/fit-tracker/store"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

func newPlotCommand(a *app) *cobra.Command {
	var (
		output   string
		title    string
		fromDB   bool
		from, to string
		width    float64
		height   float64
	)
	cmd := &cobra.Command{
		Use:   "plot PATH...",
		Short: "Plot heart rate over time, one line per file type",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				inputs []hrplot.Input
				err    error
			)
			if fromDB {
				inputs, err = a.archivedInputs(cmd, from, to)
			} else {
				if len(args) == 0 {
					return fmt.Errorf("at least one fit file is required")
				}
				inputs, err = a.fileInputs(args)
			}
			if err != nil {
				return err
			}

			series := hrplot.Prepare(inputs, a.cfg.Calibration)
			if len(series) == 0 {
				return fmt.Errorf("no heart rate samples to plot")
			}
			err = hrplot.Save(series, title, output, vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch)
			if err != nil {
				return err
			}
			a.log.WithField("path", output).Info("wrote plot")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "heart_rate.png", "Image file; format follows the extension")
	cmd.Flags().StringVar(&title, "title", "Heart rate", "Plot title")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "Plot archived samples instead of files")
	cmd.Flags().StringVar(&from, "from", "", "With --from-db, earliest time (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "With --from-db, latest time, exclusive (RFC3339)")
	cmd.Flags().Float64Var(&width, "width", float64(hrplot.DefaultWidth/vg.Inch), "Image width in inches")
	cmd.Flags().Float64Var(&height, "height", float64(hrplot.DefaultHeight/vg.Inch), "Image height in inches")
	return cmd
}

func (a *app) fileInputs(paths []string) ([]hrplot.Input, error) {
	extractor := fittrack.NewExtractor(a.cfg.Calibration)
	inputs := make([]hrplot.Input, 0, len(paths))
	for _, path := range paths {
		bundle, err := a.decode(path)
		if err != nil {
			return nil, err
		}
		group := fittrack.GroupType(bundle.Messages)
		a.log.WithField("file", path).WithField("group", group).Debug("plotting")
		inputs = append(inputs, hrplot.Input{Group: group, Samples: extractor.Extract(bundle.Messages)})
	}
	return inputs, nil
}

func (a *app) archivedInputs(cmd *cobra.Command, from, to string) ([]hrplot.Input, error) {
	fromT, err := parseTime(from)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	toT, err := parseTime(to)
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}

	s, err := store.Open(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	recs, err := s.Samples(cmd.Context(), fromT, toT)
	if err != nil {
		return nil, err
	}
	inputs := make([]hrplot.Input, 0, len(recs))
	for _, r := range recs {
		inputs = append(inputs, hrplot.Input{Group: r.Group, Samples: []fittrack.HeartRateSample{r.HeartRateSample}})
	}
	return inputs, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
