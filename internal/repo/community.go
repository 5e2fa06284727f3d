package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/maumeum/internal/models"
)

func (r *GormRepo) CreateCommunityPost(ctx context.Context, p *models.CommunityPost) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetCommunityPost(ctx context.Context, id string) (*models.CommunityPost, error) {
	var p models.CommunityPost
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func pageCommunity(q *gorm.DB, offset, limit int) (int64, []models.CommunityPost, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.CommunityPost
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ListCommunityPosts pages through the board, optionally within one category.
func (r *GormRepo) ListCommunityPosts(ctx context.Context, postType string, offset, limit int) (int64, []models.CommunityPost, error) {
	q := r.DB.WithContext(ctx).Model(&models.CommunityPost{})
	if postType != "" {
		q = q.Where("post_type = ?", postType)
	}
	return pageCommunity(q, offset, limit)
}

// SearchCommunityPosts matches keyword against titles.
func (r *GormRepo) SearchCommunityPosts(ctx context.Context, keyword, postType string, offset, limit int) (int64, []models.CommunityPost, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
	q := r.DB.WithContext(ctx).Model(&models.CommunityPost{}).Where("LOWER(title) LIKE ?", pattern)
	if postType != "" {
		q = q.Where("post_type = ?", postType)
	}
	return pageCommunity(q, offset, limit)
}

func (r *GormRepo) ListCommunityPostsByUser(ctx context.Context, userID string) ([]models.CommunityPost, error) {
	var items []models.CommunityPost
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) UpdateCommunityPost(ctx context.Context, id string, fields map[string]any) (*models.CommunityPost, error) {
	if len(fields) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.CommunityPost{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.GetCommunityPost(ctx, id)
}

// DeleteCommunityPost removes a post together with its comments.
func (r *GormRepo) DeleteCommunityPost(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCommunityPost(tx, id)
	})
}

func deleteCommunityPost(tx *gorm.DB, id string) error {
	if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&models.CommunityPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) MarkCommunityPostReported(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&models.CommunityPost{}).
		Where("id = ?", id).
		Update("is_reported", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ListReportedCommunityPosts(ctx context.Context, offset, limit int) (int64, []models.CommunityPost, error) {
	q := r.DB.WithContext(ctx).Model(&models.CommunityPost{}).Where("is_reported = ?", true)
	return pageCommunity(q, offset, limit)
}

// DeleteReportedCommunityPost is the moderation delete: comments go with the
// post and the author's report counter goes up.
func (r *GormRepo) DeleteReportedCommunityPost(ctx context.Context, id string) (*models.CommunityPost, error) {
	var p models.CommunityPost
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_reported = ?", id, true).First(&p).Error; err != nil {
			return notFound(err)
		}
		if err := deleteCommunityPost(tx, id); err != nil {
			return err
		}
		return incrementReportedTimes(tx, p.UserID)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListComments returns a post's thread, oldest first.
func (r *GormRepo) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var items []models.Comment
	err := r.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListCommentedPosts returns the posts userID has commented on, each once.
func (r *GormRepo) ListCommentedPosts(ctx context.Context, userID string) ([]models.CommunityPost, error) {
	sub := r.DB.WithContext(ctx).Model(&models.Comment{}).Select("post_id").Where("user_id = ?", userID)

	var items []models.CommunityPost
	err := r.DB.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) UpdateComment(ctx context.Context, id, content string) (*models.Comment, error) {
	res := r.DB.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("content", content)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetComment(ctx, id)
}

func (r *GormRepo) DeleteComment(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
