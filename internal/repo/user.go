package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/pkg/roles"
)

var sessionFields = []string{"id", "email", "nickname", "phone", "role", "refresh_token"}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindUserByRefreshToken returns the identity whose live refresh token equals
// token, or ErrNotFound when no identity holds it.
func (r *GormRepo) FindUserByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var user models.User
	err := r.DB.WithContext(ctx).
		Select(sessionFields).
		Where("refresh_token = ?", token).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// SetRefreshToken overwrites the stored refresh token. Last write wins.
func (r *GormRepo) SetRefreshToken(ctx context.Context, userID, token string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ClearRefreshToken(ctx context.Context, token string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("refresh_token = ?", token).
		Update("refresh_token", nil).Error
}

func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	exists, err := r.EmailExists(ctx, u.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserAlreadyExist
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = roles.User
	}
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExist
		}
		return err
	}
	return nil
}

func (r *GormRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUser applies the given column updates and returns the fresh row.
func (r *GormRepo) UpdateUser(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	if len(fields) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.FindUserByID(ctx, id)
}

func (r *GormRepo) UpdateRole(ctx context.Context, id string, role roles.Role) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ListUsersByRole(ctx context.Context, role roles.Role) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func incrementReportedTimes(tx *gorm.DB, userID string) error {
	if userID == "" {
		return nil
	}
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("reported_times", gorm.Expr("reported_times + 1")).Error
}
