package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/internal/mykafka"
)

type PostingStore interface {
	ListOpenPostings(ctx context.Context) ([]models.Posting, error)
	ClosePosting(ctx context.Context, id string) (bool, error)
}

type StatusIndex interface {
	UpdatePostingStatus(ctx context.Context, id string, status models.PostingStatus) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// StatusCloser moves open postings whose end date has passed to closed.
// Closed postings are never reopened.
type StatusCloser struct {
	Store  PostingStore
	Index  StatusIndex
	Events EventPublisher
	Logger *slog.Logger
	Now    func() time.Time
}

type Report struct {
	Scanned int
	Closed  int
	Failed  int
}

func (j *StatusCloser) now() time.Time {
	if j.Now == nil {
		return time.Now()
	}
	return j.Now()
}

func (j *StatusCloser) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}

// Run performs one scan. A posting that fails to persist is counted and
// logged; the rest of the scan goes on and the next run retries it.
func (j *StatusCloser) Run(ctx context.Context) (Report, error) {
	l := j.logger().With("job", "posting_status")
	now := j.now()

	open, err := j.Store.ListOpenPostings(ctx)
	if err != nil {
		l.Error("status_scan_failed", "error", err)
		return Report{}, err
	}

	rep := Report{Scanned: len(open)}
	for _, p := range open {
		if err := ctx.Err(); err != nil {
			l.Warn("status_scan_interrupted", "scanned", rep.Scanned, "closed", rep.Closed, "error", err)
			return rep, err
		}
		if !p.EndDate.Before(now) {
			continue
		}

		closed, err := j.Store.ClosePosting(ctx, p.ID)
		if err != nil {
			rep.Failed++
			l.Error("status_close_failed", "posting_id", p.ID, "error", err)
			continue
		}
		if !closed {
			continue
		}
		rep.Closed++
		j.afterClose(ctx, l, p.ID, now)
	}

	l.Info("status_scan_done", "scanned", rep.Scanned, "closed", rep.Closed, "failed", rep.Failed)
	return rep, nil
}

func (j *StatusCloser) afterClose(ctx context.Context, l *slog.Logger, id string, at time.Time) {
	if j.Index != nil {
		if err := j.Index.UpdatePostingStatus(ctx, id, models.PostingClosed); err != nil {
			l.Warn("status_reindex_failed", "posting_id", id, "error", err)
		}
	}
	if j.Events != nil {
		event := map[string]any{
			"type":       "posting_closed",
			"postingID":  id,
			"occurredAt": at.UTC(),
		}
		if err := j.Events.PublishEvent(ctx, mykafka.TopicPostingEvents, id, event); err != nil {
			l.Warn("event_publish_failed", "posting_id", id, "error", err)
		}
	}
}
