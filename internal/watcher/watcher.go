// Package watcher repeats an import on an interval, picking up files that
// appear after the previous pass.
package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/withObsrvr/oracle-persist/internal/importer"
	"github.com/withObsrvr/oracle-persist/internal/logging"
)

// Runner is one import pass. *importer.Importer satisfies it.
type Runner interface {
	Run(ctx context.Context) (importer.Summary, error)
}

type Watcher struct {
	runner   Runner
	interval time.Duration
	log      *slog.Logger
}

func New(runner Runner, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		runner:   runner,
		interval: interval,
		log:      logging.Component("watcher"),
	}
}

// Run imports until ctx is cancelled or a pass fails. Cancellation is not an
// error.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for pass := 1; ; pass++ {
		summary, err := w.runner.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if len(summary.Files) > 0 {
			w.log.Info("pass complete", "pass", pass, "files", len(summary.Files), "records", summary.Records)
		} else {
			w.log.Debug("no new files", "pass", pass)
		}

		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
