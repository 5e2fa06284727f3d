package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/internal/mykafka"
	"github.com/Skotchmaster/maumeum/pkg/logging"
)

// EventPublisher is satisfied by *mykafka.Producer and mykafka.Noop.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// PostingIndex is the search side of postings. A nil index means search is
// served from the database.
type PostingIndex interface {
	IndexPosting(ctx context.Context, p *models.Posting) error
	UpdatePostingStatus(ctx context.Context, id string, status models.PostingStatus) error
	DeletePosting(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Posting, error)
}

// publish never fails the caller; a lost event is logged. at is the
// service clock's reading for the operation that produced the event.
func publish(ctx context.Context, p EventPublisher, at time.Time, topic, key, kind string, fields map[string]any) {
	if p == nil {
		return
	}
	event := map[string]any{
		"type":       kind,
		"occurredAt": at.UTC(),
	}
	for k, v := range fields {
		event[k] = v
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", kind, "error", err)
	}
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}

var (
	_ EventPublisher = (*mykafka.Producer)(nil)
	_ EventPublisher = mykafka.Noop{}
)
