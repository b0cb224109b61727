package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/go-age/internal/config"
)

// Publisher receives each freshly generated calendar.
type Publisher interface {
	Update(data []byte)
}

// SyncRecorder observes sync outcomes (metrics).
type SyncRecorder interface {
	ObserveSync(elapsed time.Duration, entries, today int, err error)
}

// Worker refreshes the feed on a fixed schedule.
type Worker struct {
	Generator *Generator
	Source    Source
	Interval  time.Duration
	Publisher Publisher
	Recorder  SyncRecorder // Optional
}

// Run syncs once immediately, then every Interval until ctx is cancelled.
// A failed sync is logged and retried on the next tick; the last good
// calendar stays published. Run returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	interval := w.Interval
	if interval <= 0 {
		interval = time.Duration(config.DefaultRefreshMin) * time.Minute
	}

	w.SyncOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return nil
		case <-ticker.C:
			w.SyncOnce(ctx)
		}
	}
}

// SyncOnce runs a single synchronization and publishes the result on success.
func (w *Worker) SyncOnce(ctx context.Context) (Result, error) {
	start := time.Now()
	res, err := w.Generator.RunSync(ctx, w.Source)

	if w.Recorder != nil {
		w.Recorder.ObserveSync(time.Since(start), len(res.Entries), res.Today, err)
	}
	if err != nil {
		if ctx.Err() == nil {
			slog.Error(config.MsgSyncFailed,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyError, err)
		}
		return Result{}, err
	}

	if w.Publisher != nil {
		w.Publisher.Update(res.Calendar)
	}
	return res, nil
}
