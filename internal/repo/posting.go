package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/maumeum/internal/models"
)

func (r *GormRepo) CreatePosting(ctx context.Context, p *models.Posting) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.StatusName == "" {
		p.StatusName = models.PostingOpen
	}
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetPosting(ctx context.Context, id string) (*models.Posting, error) {
	var p models.Posting
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormRepo) ListPostings(ctx context.Context, status models.PostingStatus, offset, limit int) (int64, []models.Posting, error) {
	q := r.DB.WithContext(ctx).Model(&models.Posting{})
	if status != "" {
		q = q.Where("status_name = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Posting
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ListPostingsByUser pages through the postings userID registered.
func (r *GormRepo) ListPostingsByUser(ctx context.Context, userID string, offset, limit int) (int64, []models.Posting, error) {
	q := r.DB.WithContext(ctx).Model(&models.Posting{}).Where("register_user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Posting
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchPostings is the SQL fallback used when no search cluster is configured.
func (r *GormRepo) SearchPostings(ctx context.Context, query string, offset, limit int) (int64, []models.Posting, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	where := "LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(cent_name) LIKE ?"

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Posting{}).
		Where(where, pattern, pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Posting
	if err := r.DB.WithContext(ctx).
		Where(where, pattern, pattern, pattern).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ListOpenPostings fetches only the columns the status job needs.
func (r *GormRepo) ListOpenPostings(ctx context.Context) ([]models.Posting, error) {
	var items []models.Posting
	err := r.DB.WithContext(ctx).
		Select("id", "end_date", "status_name").
		Where("status_name = ?", models.PostingOpen).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ClosePosting moves a posting from open to closed. It reports false when
// the posting was not open, so a closed posting is never touched again.
func (r *GormRepo) ClosePosting(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Posting{}).
		Where("id = ? AND status_name = ?", id, models.PostingOpen).
		Update("status_name", models.PostingClosed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateOpenPosting applies fields to an open posting. It reports false when
// the posting is missing or already closed.
func (r *GormRepo) UpdateOpenPosting(ctx context.Context, id string, fields map[string]any) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Posting{}).
		Where("id = ? AND status_name = ?", id, models.PostingOpen).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementApplyCount takes one seat on an open posting. It reports false
// when the posting is missing, closed or already full.
func (r *GormRepo) IncrementApplyCount(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Posting{}).
		Where("id = ? AND status_name = ? AND apply_count < register_count", id, models.PostingOpen).
		Update("apply_count", gorm.Expr("apply_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) MarkPostingReported(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&models.Posting{}).
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

func (r *GormRepo) ListReportedPostings(ctx context.Context, offset, limit int) (int64, []models.Posting, error) {
	q := r.DB.WithContext(ctx).Model(&models.Posting{}).Where("is_reported = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Posting
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// DeleteReportedPosting removes a reported posting and counts the report
// against its author, in one transaction. Postings that were never reported
// are reported as ErrNotFound.
func (r *GormRepo) DeleteReportedPosting(ctx context.Context, id string) (*models.Posting, error) {
	var p models.Posting
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_reported = ?", id, true).First(&p).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Posting{}).Error; err != nil {
			return err
		}
		return incrementReportedTimes(tx, p.RegisterUserID)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
