package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/internal/mykafka"
	"github.com/Skotchmaster/maumeum/internal/repo"
	"github.com/Skotchmaster/maumeum/internal/transport"
	"github.com/Skotchmaster/maumeum/pkg/logging"
	"github.com/Skotchmaster/maumeum/pkg/roles"
)

type CommunityService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
	Now    func() time.Time
}

type CommunityPage struct {
	Total int64
	Items []models.CommunityPost
}

type CommunityThread struct {
	Post     *models.CommunityPost `json:"post"`
	Comments []models.Comment      `json:"comments"`
}

func (s *CommunityService) now() time.Time {
	return nowOr(s.Now)
}

func validateCommunityPost(req transport.CommunityPostRequest) error {
	var errs []error
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if strings.TrimSpace(req.Content) == "" {
		errs = append(errs, errors.New("content is required"))
	}
	if strings.TrimSpace(req.PostType) == "" {
		errs = append(errs, errors.New("postType is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %v", ErrArgument, err)
	}
	return nil
}

func (s *CommunityService) Create(ctx context.Context, userID string, req transport.CommunityPostRequest) (*models.CommunityPost, error) {
	l := logging.FromContext(ctx).With("svc", "community.create", "user_id", userID)

	if err := validateCommunityPost(req); err != nil {
		l.Warn("community_create_error", "status", 400, "error", err)
		return nil, err
	}
	p := &models.CommunityPost{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		PostType: strings.TrimSpace(req.PostType),
		UserID:   userID,
	}
	if err := s.Repo.CreateCommunityPost(ctx, p); err != nil {
		l.Error("community_create_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, s.now(), mykafka.TopicCommunityEvents, p.ID, "community_post_created", map[string]any{
		"postID":   p.ID,
		"userID":   userID,
		"postType": p.PostType,
	})
	l.Info("community_post_created", "post_id", p.ID)
	return p, nil
}

// List pages through the board. An empty category lists every post.
func (s *CommunityService) List(ctx context.Context, category string, offset, limit int) (*CommunityPage, error) {
	total, items, err := s.Repo.ListCommunityPosts(ctx, strings.TrimSpace(category), offset, limit)
	if err != nil {
		return nil, err
	}
	return &CommunityPage{Total: total, Items: items}, nil
}

func (s *CommunityService) Search(ctx context.Context, keyword, category string, offset, limit int) (*CommunityPage, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: query is required", ErrArgument)
	}
	total, items, err := s.Repo.SearchCommunityPosts(ctx, keyword, strings.TrimSpace(category), offset, limit)
	if err != nil {
		return nil, err
	}
	return &CommunityPage{Total: total, Items: items}, nil
}

func (s *CommunityService) get(ctx context.Context, id string) (*models.CommunityPost, error) {
	p, err := s.Repo.GetCommunityPost(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return p, nil
}

// Get returns a post with its comments, oldest first.
func (s *CommunityService) Get(ctx context.Context, id string) (*CommunityThread, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.Repo.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CommunityThread{Post: p, Comments: comments}, nil
}

func (s *CommunityService) ListByUser(ctx context.Context, userID string) ([]models.CommunityPost, error) {
	return s.Repo.ListCommunityPostsByUser(ctx, userID)
}

func (s *CommunityService) Update(ctx context.Context, userID, id string, req transport.CommunityPostRequest) (*models.CommunityPost, error) {
	l := logging.FromContext(ctx).With("svc", "community.update", "user_id", userID, "post_id", id)

	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		l.Warn("community_update_error", "status", 403, "reason", "not the author")
		return nil, ErrAuthorization
	}
	if err := validateCommunityPost(req); err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateCommunityPost(ctx, id, map[string]any{
		"title":     strings.TrimSpace(req.Title),
		"content":   req.Content,
		"post_type": strings.TrimSpace(req.PostType),
	})
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		l.Error("community_update_error", "status", 500, "error", err)
		return nil, err
	}
	l.Info("community_post_updated")
	return updated, nil
}

// Delete removes a post and its comments. Authors delete their own posts;
// admins may delete any.
func (s *CommunityService) Delete(ctx context.Context, userID string, role roles.Role, id string) error {
	l := logging.FromContext(ctx).With("svc", "community.delete", "user_id", userID, "post_id", id)

	p, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != userID && role != roles.Admin {
		l.Warn("community_delete_error", "status", 403, "reason", "not the author")
		return ErrAuthorization
	}
	if err := s.Repo.DeleteCommunityPost(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrResourceNotFound
		}
		l.Error("community_delete_error", "status", 500, "error", err)
		return err
	}
	l.Info("community_post_deleted")
	return nil
}

func (s *CommunityService) Report(ctx context.Context, reporterID, id string) error {
	l := logging.FromContext(ctx).With("svc", "community.report", "user_id", reporterID, "post_id", id)

	if err := s.Repo.MarkCommunityPostReported(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrResourceNotFound
		}
		l.Error("community_report_error", "status", 500, "error", err)
		return err
	}
	publish(ctx, s.Events, s.now(), mykafka.TopicCommunityEvents, id, "community_post_reported", map[string]any{
		"postID":     id,
		"reporterID": reporterID,
	})
	l.Info("community_post_reported")
	return nil
}

func (s *CommunityService) ListReported(ctx context.Context, offset, limit int) (*CommunityPage, error) {
	total, items, err := s.Repo.ListReportedCommunityPosts(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &CommunityPage{Total: total, Items: items}, nil
}

func (s *CommunityService) DeleteReported(ctx context.Context, adminID, id string) error {
	l := logging.FromContext(ctx).With("svc", "community.delete_reported", "user_id", adminID, "post_id", id)

	p, err := s.Repo.DeleteReportedCommunityPost(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrResourceNotFound
		}
		l.Error("community_delete_error", "status", 500, "error", err)
		return err
	}
	publish(ctx, s.Events, s.now(), mykafka.TopicCommunityEvents, id, "community_post_removed", map[string]any{
		"postID":    id,
		"authorID":  p.UserID,
		"removedBy": adminID,
	})
	l.Info("community_post_removed", "author_id", p.UserID)
	return nil
}
