package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}

// Schedule registers job on a standard five-field cron spec. Overlapping
// triggers are skipped while a run is still in progress. The caller starts
// and stops the returned cron.
func Schedule(ctx context.Context, spec string, loc *time.Location, job *StatusCloser, l *slog.Logger) (*cron.Cron, error) {
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{l: l.With("component", "cron")}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	_, err := c.AddFunc(spec, func() {
		_, _ = job.Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("jobs: bad schedule %q: %w", spec, err)
	}
	return c, nil
}
