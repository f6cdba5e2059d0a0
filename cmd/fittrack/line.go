package main

import (
	"fmt"

	"github.com/lucasjlepore/fit-tracker/export"
	"github.com/spf13/cobra"
)

func newLineCommand(a *app) *cobra.Command {
	var (
		device  string
		tags    map[string]string
		output  string
		decoded bool
	)
	cmd := &cobra.Command{
		Use:   "line --device DEVICE PATH",
		Short: "Convert fit track records to influx line protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if device == "" {
				device = a.cfg.Device
			}
			if device == "" {
				return fmt.Errorf("device flag required")
			}
			merged := make(map[string]string, len(a.cfg.LineTags)+len(tags))
			for k, v := range a.cfg.LineTags {
				merged[k] = v
			}
			for k, v := range tags {
				merged[k] = v
			}

			bundle, err := a.decode(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = outputName(args[0], "line")
			}
			w, err := create(cmd, output)
			if err != nil {
				return err
			}
			defer w.Close()
			err = export.WriteLineProtocol(w, bundle.Messages, export.LineOptions{
				Device:            device,
				Tags:              merged,
				DecodedTimestamps: decoded,
			})
			if err != nil {
				return fmt.Errorf("write line protocol: %w", err)
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "Telemetry device name (required)")
	cmd.Flags().StringToStringVar(&tags, "tag", nil, "Extra tags as key=value")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default <name>.line)")
	cmd.Flags().BoolVar(&decoded, "decoded-time", false, "Stamp lines with the decoded UTC time instead of the raw fit timestamp")
	return cmd
}
