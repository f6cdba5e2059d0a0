package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucasjlepore/fit-tracker/store"
	"github.com/lucasjlepore/fit-tracker/watch"
	"github.com/spf13/cobra"
)

func newWatchCommand(a *app) *cobra.Command {
	var (
		device string
		rescan string
		settle time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Import fit files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := store.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			im := a.importer(s, device)
			w := watch.New(args[0], func(ctx context.Context, paths []string) ([]string, error) {
				res, err := im.ImportFiles(ctx, paths)
				if err != nil {
					return nil, err
				}
				return res.Failed(), nil
			})
			w.Settle = settle
			w.Rescan = a.cfg.Rescan
			if cmd.Flags().Changed("rescan") {
				w.Rescan = rescan
			}
			w.Log = a.log

			a.log.WithField("dir", args[0]).WithField("rescan", w.Rescan).Info("watching")
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "Device name recorded with each import")
	cmd.Flags().StringVar(&rescan, "rescan", "", "Cron schedule for full rescans, empty to disable (default from FITTRACK_RESCAN)")
	cmd.Flags().DurationVar(&settle, "settle", watch.DefaultSettle, "Quiet period before a changed file is imported")
	return cmd
}
