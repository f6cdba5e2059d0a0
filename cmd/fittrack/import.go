package main

import (
	"fmt"

	"github.com/lucasjlepore/fit-tracker/ingest"
	"github.com/lucasjlepore/fit-tracker/store"
	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "import PATH...",
		Short: "Archive heart rate samples from fit files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			im := a.importer(s, device)
			res, err := im.ImportFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			inserted := 0
			for _, f := range res.Files {
				inserted += f.Inserted
			}
			fmt.Fprintf(cmd.OutOrStdout(), "import %s: %d files, %d failed, %d samples added\n",
				res.ImportID, len(res.Files), len(res.Failed()), inserted)
			if failed := res.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d files failed to import", len(failed), len(res.Files))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "Device name recorded with the import")
	return cmd
}

func (a *app) importer(s *store.Store, device string) *ingest.Importer {
	if device == "" {
		device = a.cfg.Device
	}
	return &ingest.Importer{
		Store:       s,
		Calibration: a.cfg.Calibration,
		Device:      device,
		Log:         a.log,
	}
}
