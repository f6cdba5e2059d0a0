package main

import (
	"fmt"

	"github.com/lucasjlepore/fit-tracker/export"
	"github.com/spf13/cobra"
)

func newCSVCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "csv PATH",
		Short: "Convert fit track records to csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := a.decode(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = outputName(args[0], "csv")
			}
			w, err := create(cmd, output)
			if err != nil {
				return err
			}
			defer w.Close()
			if err := export.WriteTrackCSV(w, bundle.Messages); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default <name>.csv)")
	return cmd
}
