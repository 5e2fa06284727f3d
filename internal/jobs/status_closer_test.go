package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/internal/repo"
	"github.com/Skotchmaster/maumeum/internal/testdb"
	"github.com/Skotchmaster/maumeum/pkg/logging"
)

var jobNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func seedPosting(t *testing.T, r *repo.GormRepo, end time.Time) *models.Posting {
	t.Helper()
	p := &models.Posting{
		Title:         "posting",
		Content:       "content",
		CentName:      "center",
		Deadline:      end.Add(-72 * time.Hour),
		StartDate:     end.Add(-4 * time.Hour),
		EndDate:       end,
		RegisterCount: 5,
	}
	require.NoError(t, r.CreatePosting(context.Background(), p))
	return p
}

func statusOf(t *testing.T, r *repo.GormRepo, id string) models.PostingStatus {
	t.Helper()
	p, err := r.GetPosting(context.Background(), id)
	require.NoError(t, err)
	return p.StatusName
}

type recordingIndex struct{ updated []string }

func (r *recordingIndex) UpdatePostingStatus(_ context.Context, id string, _ models.PostingStatus) error {
	r.updated = append(r.updated, id)
	return nil
}

type recordingEvents struct {
	keys []string
	at   []time.Time
}

func (r *recordingEvents) PublishEvent(_ context.Context, _, key string, event any) error {
	r.keys = append(r.keys, key)
	if m, ok := event.(map[string]any); ok {
		at, _ := m["occurredAt"].(time.Time)
		r.at = append(r.at, at)
	}
	return nil
}

func TestStatusCloser_ClosesOnlyElapsedPostings(t *testing.T) {
	r := repo.New(testdb.New(t))
	yesterday := seedPosting(t, r, jobNow.Add(-24*time.Hour))
	tomorrow := seedPosting(t, r, jobNow.Add(24*time.Hour))
	exactlyNow := seedPosting(t, r, jobNow)

	idx := &recordingIndex{}
	events := &recordingEvents{}
	job := &StatusCloser{
		Store:  r,
		Index:  idx,
		Events: events,
		Logger: logging.NewWithWriter(&bytes.Buffer{}, "error"),
		Now:    func() time.Time { return jobNow },
	}

	rep, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Scanned: 3, Closed: 1}, rep)

	assert.Equal(t, models.PostingClosed, statusOf(t, r, yesterday.ID))
	assert.Equal(t, models.PostingOpen, statusOf(t, r, tomorrow.ID))
	assert.Equal(t, models.PostingOpen, statusOf(t, r, exactlyNow.ID), "end date equal to now is not elapsed")

	assert.Equal(t, []string{yesterday.ID}, idx.updated)
	assert.Equal(t, []string{yesterday.ID}, events.keys)
	require.Len(t, events.at, 1)
	assert.True(t, events.at[0].Equal(jobNow), "event carries the scan instant")
}

func TestStatusCloser_Idempotent(t *testing.T) {
	r := repo.New(testdb.New(t))
	p := seedPosting(t, r, jobNow.Add(-time.Hour))

	job := &StatusCloser{Store: r, Now: func() time.Time { return jobNow }}

	first, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Closed)

	second, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{}, second)
	assert.Equal(t, models.PostingClosed, statusOf(t, r, p.ID))
}

func TestStatusCloser_NeverReopens(t *testing.T) {
	r := repo.New(testdb.New(t))
	p := seedPosting(t, r, jobNow.Add(-time.Hour))

	closedAt := func() time.Time { return jobNow }
	_, err := (&StatusCloser{Store: r, Now: closedAt}).Run(context.Background())
	require.NoError(t, err)

	// a clock that moved backwards must not reopen anything
	earlier := func() time.Time { return jobNow.Add(-48 * time.Hour) }
	_, err = (&StatusCloser{Store: r, Now: earlier}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PostingClosed, statusOf(t, r, p.ID))
}

type flakyStore struct {
	open   []models.Posting
	failID string
	closed []string
}

func (f *flakyStore) ListOpenPostings(context.Context) ([]models.Posting, error) {
	return f.open, nil
}

func (f *flakyStore) ClosePosting(_ context.Context, id string) (bool, error) {
	if id == f.failID {
		return false, errors.New("write failed")
	}
	f.closed = append(f.closed, id)
	return true, nil
}

func TestStatusCloser_FailureDoesNotStopScan(t *testing.T) {
	past := jobNow.Add(-time.Hour)
	store := &flakyStore{
		open: []models.Posting{
			{ID: "a", EndDate: past, StatusName: models.PostingOpen},
			{ID: "b", EndDate: past, StatusName: models.PostingOpen},
			{ID: "c", EndDate: past, StatusName: models.PostingOpen},
		},
		failID: "b",
	}
	var logs bytes.Buffer
	job := &StatusCloser{
		Store:  store,
		Logger: logging.NewWithWriter(&logs, "info"),
		Now:    func() time.Time { return jobNow },
	}

	rep, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Scanned: 3, Closed: 2, Failed: 1}, rep)
	assert.Equal(t, []string{"a", "c"}, store.closed)
	assert.Contains(t, logs.String(), "status_close_failed")
}

type brokenStore struct{}

func (brokenStore) ListOpenPostings(context.Context) ([]models.Posting, error) {
	return nil, errors.New("db down")
}

func (brokenStore) ClosePosting(context.Context, string) (bool, error) { return false, nil }

func TestStatusCloser_ListFailure(t *testing.T) {
	job := &StatusCloser{Store: brokenStore{}, Logger: logging.NewWithWriter(&bytes.Buffer{}, "error")}
	_, err := job.Run(context.Background())
	assert.Error(t, err)
}

func TestStatusCloser_StopsOnCancelledContext(t *testing.T) {
	store := &flakyStore{open: []models.Posting{{ID: "a", EndDate: jobNow.Add(-time.Hour)}}}
	job := &StatusCloser{Store: store, Now: func() time.Time { return jobNow }}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := job.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.closed)
}
