package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go-signage-cms/internal/domain"
)

type SlideRepo struct{ db *gorm.DB }

func NewSlideRepo(db *gorm.DB) *SlideRepo { return &SlideRepo{db: db} }

func (r *SlideRepo) Create(ctx context.Context, s *domain.Slide) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SlideRepo) CreateBatch(ctx context.Context, slides []domain.Slide) error {
	if len(slides) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&slides).Error
}

func (r *SlideRepo) FindByID(ctx context.Context, id string) (*domain.Slide, error) {
	var s domain.Slide
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *SlideRepo) ListByShow(ctx context.Context, showID string) ([]domain.Slide, error) {
	var slides []domain.Slide
	err := r.db.WithContext(ctx).
		Where("slideshow_id = ?", showID).
		Order("display_order, id").
		Find(&slides).Error
	return slides, err
}

func (r *SlideRepo) CountByShow(ctx context.Context, showID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Slide{}).
		Where("slideshow_id = ?", showID).Count(&n).Error
	return n, err
}

// ListActiveFeed 展示端取片：合集必须 active，片必须 active，顺序全局稳定
func (r *SlideRepo) ListActiveFeed(ctx context.Context) ([]domain.Slide, error) {
	var slides []domain.Slide
	err := r.db.WithContext(ctx).Model(&domain.Slide{}).
		Joins("JOIN slideshows ON slideshows.id = slides.slideshow_id").
		Where("slides.is_active = ? AND slideshows.status = ?", true, domain.StatusActive).
		Order("slideshows.display_order, slideshows.id, slides.display_order, slides.id").
		Find(&slides).Error
	return slides, err
}

func (r *SlideRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Slide{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *SlideRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Slide{})
	return res.RowsAffected, res.Error
}

// MarkNotLoaded 展示端报图挂了；编辑片子时标记自动复位
func (r *SlideRepo) MarkNotLoaded(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Slide{}).Where("id = ?", id).
		UpdateColumn("is_loaded", false)
	return res.RowsAffected, res.Error
}

func (r *SlideRepo) ListNotLoaded(ctx context.Context) ([]domain.Slide, error) {
	var slides []domain.Slide
	err := r.db.WithContext(ctx).
		Where("is_loaded = ?", false).
		Order("slideshow_id, display_order, id").
		Find(&slides).Error
	return slides, err
}

// IncrementView 多块屏幕并发打点，必须单条 UPDATE 原子自增
func (r *SlideRepo) IncrementView(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Slide{}).Where("id = ?", id).
		UpdateColumns(map[string]any{
			"view_count":    gorm.Expr("view_count + ?", 1),
			"last_shown_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
