package main

import (
	"fmt"

	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/export"
	"github.com/spf13/cobra"
)

func newSummarizeCommand(a *app) *cobra.Command {
	var (
		jsonOut bool
		device  string
	)
	cmd := &cobra.Command{
		Use:   "summarize PATH...",
		Short: "Summarize heart rate data per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if device == "" {
				device = a.cfg.Device
			}
			tags := make(map[string]string, len(a.cfg.LineTags)+1)
			for k, v := range a.cfg.LineTags {
				tags[k] = v
			}
			if device != "" {
				tags["device"] = device
			}

			summaries := make([]*fittrack.Summary, 0, len(args))
			for _, path := range args {
				bundle, err := a.decode(path)
				if err != nil {
					return err
				}
				summaries = append(summaries, fittrack.Summarize(bundle.Messages, a.cfg.Calibration, tags))
			}
			if jsonOut {
				return export.WriteJSON(cmd.OutOrStdout(), summaries)
			}
			for i, s := range summaries {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintln(cmd.OutOrStdout(), args[i])
				fmt.Fprintln(cmd.OutOrStdout(), s.Notes)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit summaries as JSON")
	cmd.Flags().StringVar(&device, "device", "", "Device tag attached to summaries")
	return cmd
}
