package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/internal/mykafka"
	"github.com/Skotchmaster/maumeum/internal/repo"
	"github.com/Skotchmaster/maumeum/pkg/logging"
	"github.com/Skotchmaster/maumeum/pkg/roles"
)

type CommentService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
	Now    func() time.Time
}

func (s *CommentService) now() time.Time {
	return nowOr(s.Now)
}

func commentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content is required", ErrArgument)
	}
	return content, nil
}

func (s *CommentService) Create(ctx context.Context, userID, postID, content string) (*models.Comment, error) {
	l := logging.FromContext(ctx).With("svc", "comment.create", "user_id", userID, "post_id", postID)

	content, err := commentContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetCommunityPost(ctx, postID); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	c := &models.Comment{PostID: postID, UserID: userID, Content: content}
	if err := s.Repo.CreateComment(ctx, c); err != nil {
		l.Error("comment_create_error", "status", 500, "error", err)
		return nil, err
	}
	publish(ctx, s.Events, s.now(), mykafka.TopicCommunityEvents, postID, "comment_created", map[string]any{
		"postID":    postID,
		"commentID": c.ID,
		"userID":    userID,
	})
	l.Info("comment_created", "comment_id", c.ID)
	return c, nil
}

func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := s.Repo.GetCommunityPost(ctx, postID); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return s.Repo.ListComments(ctx, postID)
}

// CommentedPosts lists the posts userID took part in.
func (s *CommentService) CommentedPosts(ctx context.Context, userID string) ([]models.CommunityPost, error) {
	return s.Repo.ListCommentedPosts(ctx, userID)
}

func (s *CommentService) own(ctx context.Context, userID, id string) (*models.Comment, error) {
	c, err := s.Repo.GetComment(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrAuthorization
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, userID, id, content string) (*models.Comment, error) {
	content, err := commentContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.own(ctx, userID, id); err != nil {
		return nil, err
	}
	c, err := s.Repo.UpdateComment(ctx, id, content)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete removes a comment. Admins may remove anyone's.
func (s *CommentService) Delete(ctx context.Context, userID string, role roles.Role, id string) error {
	if role != roles.Admin {
		if _, err := s.own(ctx, userID, id); err != nil {
			return err
		}
	}
	if err := s.Repo.DeleteComment(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrResourceNotFound
		}
		return err
	}
	logging.FromContext(ctx).Info("comment_deleted", "svc", "comment.delete", "user_id", userID, "comment_id", id)
	return nil
}
