package main

import (
	"fmt"

	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/spf13/cobra"
)

func newTypeCommand(a *app) *cobra.Command {
	var file, activity, data bool
	cmd := &cobra.Command{
		Use:   "type [--file] [--activity] [--data] PATH...",
		Short: "Display fit file type information",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !file && !activity && !data {
				data = true
			}
			for _, path := range args {
				bundle, err := a.decode(path)
				if err != nil {
					return err
				}
				msgs := bundle.Messages
				if file {
					fmt.Fprintln(cmd.OutOrStdout(), fittrack.ClassifyFile(msgs))
				}
				if activity {
					fmt.Fprintln(cmd.OutOrStdout(), fittrack.ClassifyActivity(msgs))
				}
				if data {
					fmt.Fprintln(cmd.OutOrStdout(), fittrack.FriendlyDataType(msgs))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&file, "file", false, "Print the file type")
	cmd.Flags().BoolVar(&activity, "activity", false, "Print the activity (sport) name")
	cmd.Flags().BoolVar(&data, "data", false, "Print the short data type label (default)")
	return cmd
}
