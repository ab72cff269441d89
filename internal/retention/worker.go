package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
)

// SweepArgs schedules one usage-retention sweep. RetainDays counters are
// kept; anything older goes.
type SweepArgs struct {
	RetainDays int `json:"retain_days"`
}

func (SweepArgs) Kind() string { return "usage_retention_sweep" }

// UsageStore is the deletion surface the sweeper needs.
type UsageStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SweepWorker prunes old free-tier usage counters. The metering engine only
// ever reads today's row, so pruning history is safe; it runs only when an
// operator configured a retention window.
type SweepWorker struct {
	river.WorkerDefaults[SweepArgs]
	usage UsageStore
	log   *slog.Logger
}

func NewSweepWorker(usage UsageStore, log *slog.Logger) *SweepWorker {
	if log == nil {
		log = slog.Default()
	}
	return &SweepWorker{usage: usage, log: log}
}

func (w *SweepWorker) Work(ctx context.Context, job *river.Job[SweepArgs]) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -job.Args.RetainDays)
	cutoff = time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)

	deleted, err := w.usage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	w.log.Info("usage retention sweep complete", "cutoff", cutoff.Format("2006-01-02"), "deleted", deleted)
	return nil
}
