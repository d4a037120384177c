package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-signage-cms/internal/domain"
)

type SlideshowRepo struct{ db *gorm.DB }

func NewSlideshowRepo(db *gorm.DB) *SlideshowRepo { return &SlideshowRepo{db: db} }

func (r *SlideshowRepo) Create(ctx context.Context, s *domain.Slideshow) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SlideshowRepo) FindByID(ctx context.Context, id string) (*domain.Slideshow, error) {
	var s domain.Slideshow
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

// List 管理端列表；ownerID 非空则只取该用户的（权限过滤在服务端做，不信客户端）
func (r *SlideshowRepo) List(ctx context.Context, ownerID string) ([]domain.Slideshow, error) {
	q := r.db.WithContext(ctx).Model(&domain.Slideshow{})
	if ownerID != "" {
		q = q.Where("created_by = ?", ownerID)
	}
	var shows []domain.Slideshow
	err := q.Order("display_order, id").Find(&shows).Error
	return shows, err
}

func (r *SlideshowRepo) ListActive(ctx context.Context) ([]domain.Slideshow, error) {
	var shows []domain.Slideshow
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusActive).
		Order("display_order, id").
		Find(&shows).Error
	return shows, err
}

func (r *SlideshowRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Slideshow{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

// NextDisplayOrder 取 max+1，序号不要求连续
func (r *SlideshowRepo) NextDisplayOrder(ctx context.Context) (int, error) {
	var maxOrder *int
	err := r.db.WithContext(ctx).Model(&domain.Slideshow{}).
		Select("MAX(display_order)").Scan(&maxOrder).Error
	if err != nil || maxOrder == nil {
		return 0, err
	}
	return *maxOrder + 1, nil
}

// DeleteCascade 一个事务里先删子片再删合集
func (r *SlideshowRepo) DeleteCascade(ctx context.Context, id string) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slideshow_id = ?", id).Delete(&domain.Slide{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Slideshow{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// IncrementDisplayCount 单条 UPDATE 原子自增，不走读改写
func (r *SlideshowRepo) IncrementDisplayCount(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Slideshow{}).Where("id = ?", id).
		UpdateColumn("display_count", gorm.Expr("display_count + ?", 1))
	return res.RowsAffected, res.Error
}
