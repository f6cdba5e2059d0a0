// Package watch imports FIT files as they appear in a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSettle is how long a file must stay quiet before it is handled.
const DefaultSettle = 2 * time.Second

// Handler processes a batch of new or changed FIT files and returns the
// paths it could not process. Those, and the whole batch when err is
// non-nil, are offered again by the next scan.
type Handler func(ctx context.Context, paths []string) (failed []string, err error)

// Watcher hands new .fit files in a directory to a Handler. Files are picked
// up by an initial scan, by filesystem events and by scheduled rescans.
type Watcher struct {
	dir    string
	handle Handler

	// Settle delays handling after the last event on a file.
	Settle time.Duration
	// Rescan is a cron spec for periodic full scans. Empty disables them.
	Rescan string
	Log    logrus.FieldLogger

	seen map[string]time.Time
}

// New returns a watcher for dir.
func New(dir string, handle Handler) *Watcher {
	return &Watcher{
		dir:    dir,
		handle: handle,
		Settle: DefaultSettle,
		seen:   make(map[string]time.Time),
	}
}

// Run watches until ctx is done. Handler errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	rescan := make(chan struct{}, 1)
	if w.Rescan != "" {
		c := cron.New()
		if _, err := c.AddFunc(w.Rescan, func() {
			select {
			case rescan <- struct{}{}:
			default:
			}
		}); err != nil {
			return fmt.Errorf("rescan schedule %q: %w", w.Rescan, err)
		}
		c.Start()
		defer c.Stop()
	}

	w.scan(ctx)

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !isFIT(event.Name) || (!event.Has(fsnotify.Create) && !event.Has(fsnotify.Write)) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.Settle)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger().WithError(err).Warn("watch error")
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			w.dispatch(ctx, paths)
		case <-rescan:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger().WithError(err).Warn("scan failed")
		return
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isFIT(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, e.Name()))
	}
	w.dispatch(ctx, paths)
}

// dispatch hands over the paths whose modification time changed since they
// were last handled successfully.
func (w *Watcher) dispatch(ctx context.Context, paths []string) {
	modTimes := make(map[string]time.Time, len(paths))
	fresh := paths[:0:0]
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if last, ok := w.seen[p]; ok && last.Equal(info.ModTime()) {
			continue
		}
		if _, dup := modTimes[p]; dup {
			continue
		}
		modTimes[p] = info.ModTime()
		fresh = append(fresh, p)
	}
	if len(fresh) == 0 {
		return
	}
	sort.Strings(fresh)

	failed, err := w.handle(ctx, fresh)
	if err != nil {
		w.logger().WithError(err).WithField("files", len(fresh)).Error("handle failed")
		return
	}
	retry := make(map[string]struct{}, len(failed))
	for _, p := range failed {
		retry[p] = struct{}{}
	}
	for _, p := range fresh {
		if _, ok := retry[p]; ok {
			continue
		}
		w.seen[p] = modTimes[p]
	}
	if len(retry) > 0 {
		w.logger().WithField("files", len(retry)).Warn("files failed, will retry on next scan")
	}
}

func (w *Watcher) logger() logrus.FieldLogger {
	if w.Log != nil {
		return w.Log
	}
	return logrus.StandardLogger()
}

func isFIT(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".fit")
}
