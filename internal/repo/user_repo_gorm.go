package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go-signage-cms/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

// UpdateFields 只更新给到的列（部分更新）
func (r *UserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *UserRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	return res.RowsAffected, res.Error
}

func (r *UserRepo) TouchLogin(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		UpdateColumn("last_login_at", time.Now()).Error
}
