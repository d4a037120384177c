package service

import (
	"context"

	"gorm.io/gorm"

	"go-signage-cms/internal/domain"
)

type ShowStats struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	DisplayCount int64  `json:"displayCount"`
	SlideCount   int64  `json:"slideCount"`
}

type Overview struct {
	TotalSlideshows    int64          `json:"totalSlideshows"`
	ActiveSlideshows   int64          `json:"activeSlideshows"`
	InactiveSlideshows int64          `json:"inactiveSlideshows"`
	TotalSlides        int64          `json:"totalSlides"`
	TotalDisplays      int64          `json:"totalDisplays"`
	TotalViews         int64          `json:"totalViews"`
	NotLoadedCount     int64          `json:"notLoadedCount"`
	NotLoadedSlides    []domain.Slide `json:"notLoadedSlides"`
	Slideshows         []ShowStats    `json:"slideshows"`
}

// StatsService 聚合只读，直接拿 db 查
type StatsService struct{ db *gorm.DB }

func NewStatsService(db *gorm.DB) *StatsService { return &StatsService{db: db} }

func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	var o Overview
	db := s.db.WithContext(ctx)

	if err := db.Model(&domain.Slideshow{}).Count(&o.TotalSlideshows).Error; err != nil {
		return nil, domain.Storage("count slideshows failed", err)
	}
	if err := db.Model(&domain.Slideshow{}).Where("status = ?", domain.StatusActive).Count(&o.ActiveSlideshows).Error; err != nil {
		return nil, domain.Storage("count active slideshows failed", err)
	}
	o.InactiveSlideshows = o.TotalSlideshows - o.ActiveSlideshows
	if err := db.Model(&domain.Slide{}).Count(&o.TotalSlides).Error; err != nil {
		return nil, domain.Storage("count slides failed", err)
	}

	var sums struct {
		Displays *int64
		Views    *int64
	}
	if err := db.Model(&domain.Slideshow{}).Select("SUM(display_count) AS displays").Scan(&sums.Displays).Error; err != nil {
		return nil, domain.Storage("sum displays failed", err)
	}
	if err := db.Model(&domain.Slide{}).Select("SUM(view_count) AS views").Scan(&sums.Views).Error; err != nil {
		return nil, domain.Storage("sum views failed", err)
	}
	if sums.Displays != nil {
		o.TotalDisplays = *sums.Displays
	}
	if sums.Views != nil {
		o.TotalViews = *sums.Views
	}

	notLoaded := []domain.Slide{}
	if err := db.Where("is_loaded = ?", false).
		Order("slideshow_id, display_order, id").
		Find(&notLoaded).Error; err != nil {
		return nil, domain.Storage("list not-loaded slides failed", err)
	}
	o.NotLoadedSlides = notLoaded
	o.NotLoadedCount = int64(len(notLoaded))

	rows := []ShowStats{}
	err := db.Model(&domain.Slideshow{}).
		Select("slideshows.id, slideshows.title, slideshows.status, slideshows.display_count, COUNT(slides.id) AS slide_count").
		Joins("LEFT JOIN slides ON slides.slideshow_id = slideshows.id").
		Group("slideshows.id, slideshows.title, slideshows.status, slideshows.display_count").
		Order("slideshows.display_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.Storage("slideshow stats failed", err)
	}
	o.Slideshows = rows
	return &o, nil
}
