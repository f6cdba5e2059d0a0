package main

import (
	"os"

	"github.com/lucasjlepore/fit-tracker/export"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
	"github.com/spf13/cobra"
)

type dumpHeader struct {
	File     string             `json:"file"`
	Bundle   *fitmsg.Bundle     `json:"bundle"`
	FileID   *fitmsg.FileIDInfo `json:"file_id,omitempty"`
	Warnings []string           `json:"warnings"`
}

func newDumpCommand(a *app) *cobra.Command {
	var header bool
	cmd := &cobra.Command{
		Use:   "dump PATH",
		Short: "Dump decoded fit messages as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := a.decode(args[0])
			if err != nil {
				return err
			}
			if header {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				warnings := fitmsg.Warnings(bundle)
				if warnings == nil {
					warnings = []string{}
				}
				err = export.WriteJSON(cmd.OutOrStdout(), dumpHeader{
					File:     args[0],
					Bundle:   bundle,
					FileID:   fitmsg.ProjectFileID(data),
					Warnings: warnings,
				})
				if err != nil {
					return err
				}
			}
			return export.WriteMessagesJSONL(cmd.OutOrStdout(), bundle.Messages)
		},
	}
	cmd.Flags().BoolVar(&header, "header", false, "Print header, CRC and file_id details before the messages")
	return cmd
}
