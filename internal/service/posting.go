package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/internal/mykafka"
	"github.com/Skotchmaster/maumeum/internal/repo"
	"github.com/Skotchmaster/maumeum/internal/transport"
	"github.com/Skotchmaster/maumeum/pkg/logging"
)

type PostingService struct {
	Repo   *repo.GormRepo
	Index  PostingIndex
	Events EventPublisher
	Now    func() time.Time
}

func (s *PostingService) now() time.Time {
	return nowOr(s.Now)
}

type PostingPage struct {
	Total int64
	Items []models.Posting
}

func validatePosting(req transport.CreatePostingRequest) error {
	var errs []error
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if strings.TrimSpace(req.Content) == "" {
		errs = append(errs, errors.New("content is required"))
	}
	if strings.TrimSpace(req.CentName) == "" {
		errs = append(errs, errors.New("centName is required"))
	}
	if req.Deadline.IsZero() || req.StartDate.IsZero() || req.EndDate.IsZero() {
		errs = append(errs, errors.New("deadline, startDate and endDate are required"))
	} else {
		if req.Deadline.After(req.StartDate) {
			errs = append(errs, errors.New("deadline must not be after startDate"))
		}
		if req.StartDate.After(req.EndDate) {
			errs = append(errs, errors.New("startDate must not be after endDate"))
		}
	}
	if req.ApplyCount < 0 || req.RegisterCount < 0 {
		errs = append(errs, errors.New("counts must not be negative"))
	}
	if req.ApplyCount > req.RegisterCount {
		errs = append(errs, errors.New("applyCount must not exceed registerCount"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %v", ErrArgument, err)
	}
	return nil
}

func (s *PostingService) Create(ctx context.Context, registerUserID string, req transport.CreatePostingRequest) (*models.Posting, error) {
	l := logging.FromContext(ctx).With("svc", "posting.create", "user_id", registerUserID)

	if err := validatePosting(req); err != nil {
		l.Warn("posting_create_error", "status", 400, "error", err)
		return nil, err
	}

	p := &models.Posting{
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		CentName:        strings.TrimSpace(req.CentName),
		CentDescription: req.CentDescription,
		StatusName:      models.PostingOpen,
		Deadline:        req.Deadline,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		ApplyCount:      req.ApplyCount,
		RegisterCount:   req.RegisterCount,
		ActType:         req.ActType,
		Teenager:        req.Teenager,
		RegisterUserID:  registerUserID,
	}
	if err := s.Repo.CreatePosting(ctx, p); err != nil {
		l.Error("posting_create_error", "status", 500, "error", err)
		return nil, err
	}

	s.reindex(ctx, l, p)
	publish(ctx, s.Events, s.now(), mykafka.TopicPostingEvents, p.ID, "posting_created", map[string]any{
		"postingID": p.ID,
		"userID":    registerUserID,
	})
	l.Info("posting_created", "posting_id", p.ID)
	return p, nil
}

func (s *PostingService) Get(ctx context.Context, id string) (*models.Posting, error) {
	p, err := s.Repo.GetPosting(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PostingService) List(ctx context.Context, status string, offset, limit int) (*PostingPage, error) {
	st := models.PostingStatus(status)
	switch st {
	case "", models.PostingOpen, models.PostingClosed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrArgument, status)
	}

	total, items, err := s.Repo.ListPostings(ctx, st, offset, limit)
	if err != nil {
		return nil, err
	}
	return &PostingPage{Total: total, Items: items}, nil
}

// Search queries the search index when one is configured and falls back to
// the database when there is none or it fails.
func (s *PostingService) Search(ctx context.Context, query string, offset, limit int) (*PostingPage, error) {
	l := logging.FromContext(ctx).With("svc", "posting.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrArgument)
	}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			return &PostingPage{Total: total, Items: items}, nil
		}
		l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchPostings(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	return &PostingPage{Total: total, Items: items}, nil
}

// ListMine pages through the postings userID registered.
func (s *PostingService) ListMine(ctx context.Context, userID string, offset, limit int) (*PostingPage, error) {
	total, items, err := s.Repo.ListPostingsByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &PostingPage{Total: total, Items: items}, nil
}

// owned loads a posting and checks that userID registered it.
func (s *PostingService) owned(ctx context.Context, userID, id string) (*models.Posting, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.RegisterUserID != userID {
		return nil, ErrAuthorization
	}
	return p, nil
}

// Update rewrites an open posting's details. Applicants already counted stay
// counted, so registerCount cannot drop below the current applyCount.
func (s *PostingService) Update(ctx context.Context, userID, id string, req transport.CreatePostingRequest) (*models.Posting, error) {
	l := logging.FromContext(ctx).With("svc", "posting.update", "user_id", userID, "posting_id", id)

	current, err := s.owned(ctx, userID, id)
	if err != nil {
		l.Warn("posting_update_error", "error", err)
		return nil, err
	}
	if current.StatusName != models.PostingOpen {
		return nil, fmt.Errorf("%w: posting is closed", ErrArgument)
	}

	req.ApplyCount = current.ApplyCount
	if err := validatePosting(req); err != nil {
		l.Warn("posting_update_error", "status", 400, "error", err)
		return nil, err
	}

	updated, err := s.Repo.UpdateOpenPosting(ctx, id, map[string]any{
		"title":            strings.TrimSpace(req.Title),
		"content":          req.Content,
		"cent_name":        strings.TrimSpace(req.CentName),
		"cent_description": req.CentDescription,
		"deadline":         req.Deadline,
		"start_date":       req.StartDate,
		"end_date":         req.EndDate,
		"register_count":   req.RegisterCount,
		"act_type":         req.ActType,
		"teenager":         req.Teenager,
	})
	if err != nil {
		l.Error("posting_update_error", "status", 500, "error", err)
		return nil, err
	}
	if !updated {
		// closed by the status job between the read and the write
		return nil, fmt.Errorf("%w: posting is closed", ErrArgument)
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, l, p)
	l.Info("posting_updated")
	return p, nil
}

// Apply takes one seat on an open posting.
func (s *PostingService) Apply(ctx context.Context, userID, id string) (*models.Posting, error) {
	l := logging.FromContext(ctx).With("svc", "posting.apply", "user_id", userID, "posting_id", id)

	ok, err := s.Repo.IncrementApplyCount(ctx, id)
	if err != nil {
		l.Error("posting_apply_error", "status", 500, "error", err)
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		reason := "posting is full"
		if p.StatusName != models.PostingOpen {
			reason = "posting is closed"
		}
		l.Warn("posting_apply_error", "status", 400, "reason", reason)
		return nil, fmt.Errorf("%w: %s", ErrArgument, reason)
	}

	publish(ctx, s.Events, s.now(), mykafka.TopicPostingEvents, id, "posting_applied", map[string]any{
		"postingID":  id,
		"userID":     userID,
		"applyCount": p.ApplyCount,
	})
	l.Info("posting_applied", "apply_count", p.ApplyCount)
	return p, nil
}

// SetStatus lets the registering user close recruitment early. Closed is
// final: a posting is never reopened.
func (s *PostingService) SetStatus(ctx context.Context, userID, id, status string) (*models.Posting, error) {
	l := logging.FromContext(ctx).With("svc", "posting.set_status", "user_id", userID, "posting_id", id)

	if models.PostingStatus(status) != models.PostingClosed {
		return nil, fmt.Errorf("%w: status can only be set to %q", ErrArgument, models.PostingClosed)
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		l.Warn("posting_status_error", "error", err)
		return nil, err
	}

	closed, err := s.Repo.ClosePosting(ctx, id)
	if err != nil {
		l.Error("posting_status_error", "status", 500, "error", err)
		return nil, err
	}
	if closed {
		if s.Index != nil {
			if err := s.Index.UpdatePostingStatus(ctx, id, models.PostingClosed); err != nil {
				l.Warn("posting_index_failed", "error", err)
			}
		}
		publish(ctx, s.Events, s.now(), mykafka.TopicPostingEvents, id, "posting_closed", map[string]any{
			"postingID": id,
			"closedBy":  userID,
		})
		l.Info("posting_closed")
	}
	return s.Get(ctx, id)
}

func (s *PostingService) Report(ctx context.Context, reporterID, id string) error {
	l := logging.FromContext(ctx).With("svc", "posting.report", "user_id", reporterID, "posting_id", id)

	if err := s.Repo.MarkPostingReported(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrResourceNotFound
		}
		l.Error("posting_report_error", "status", 500, "error", err)
		return err
	}
	publish(ctx, s.Events, s.now(), mykafka.TopicPostingEvents, id, "posting_reported", map[string]any{
		"postingID":  id,
		"reporterID": reporterID,
	})
	l.Info("posting_reported")
	return nil
}

func (s *PostingService) ListReported(ctx context.Context, offset, limit int) (*PostingPage, error) {
	total, items, err := s.Repo.ListReportedPostings(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &PostingPage{Total: total, Items: items}, nil
}

// DeleteReported removes a reported posting and counts it against the author.
func (s *PostingService) DeleteReported(ctx context.Context, adminID, id string) error {
	l := logging.FromContext(ctx).With("svc", "posting.delete_reported", "user_id", adminID, "posting_id", id)

	p, err := s.Repo.DeleteReportedPosting(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrResourceNotFound
		}
		l.Error("posting_delete_error", "status", 500, "error", err)
		return err
	}
	if s.Index != nil {
		if err := s.Index.DeletePosting(ctx, id); err != nil {
			l.Warn("posting_index_failed", "error", err)
		}
	}
	publish(ctx, s.Events, s.now(), mykafka.TopicPostingEvents, id, "posting_removed", map[string]any{
		"postingID": id,
		"authorID":  p.RegisterUserID,
		"removedBy": adminID,
	})
	l.Info("posting_removed", "author_id", p.RegisterUserID)
	return nil
}

func (s *PostingService) reindex(ctx context.Context, l *slog.Logger, p *models.Posting) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexPosting(ctx, p); err != nil {
		l.Warn("posting_index_failed", "posting_id", p.ID, "error", err)
	}
}
