package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-signage-cms/internal/core/cache"
	"go-signage-cms/internal/domain"
	"go-signage-cms/internal/repo"
)

const feedCacheKey = "signage:feed:active"

// Feed 展示端一次拉走的全部内容，顺序稳定
type Feed struct {
	Slideshows []domain.Slideshow `json:"slideshows"`
	Slides     []domain.Slide     `json:"slides"`
}

// FeedService 无人值守大屏的读路径：出错宁可给空，不给 5xx
type FeedService struct {
	shows  *repo.SlideshowRepo
	slides *repo.SlideRepo
	cache  *cache.Cache // 可为 nil（未配置 redis）
	ttl    time.Duration
	log    *zap.Logger
}

func NewFeedService(shows *repo.SlideshowRepo, slides *repo.SlideRepo, c *cache.Cache, ttl time.Duration, log *zap.Logger) *FeedService {
	return &FeedService{shows: shows, slides: slides, cache: c, ttl: ttl, log: log}
}

// ActiveFeed 永远返回一个可用的 Feed；内部错误降级为空
func (s *FeedService) ActiveFeed(ctx context.Context) *Feed {
	if s.cache != nil {
		f, err := cache.GetOrLoadJSON[Feed](s.cache, ctx, feedCacheKey, s.ttl, s.load)
		if err == nil && f != nil {
			return f
		}
		if err != nil {
			s.log.Error("feed cache load", zap.Error(err))
		}
		// 缓存链路故障继续走库
	}
	f, err := s.load(ctx)
	if err != nil {
		s.log.Error("feed load", zap.Error(err))
		return &Feed{Slideshows: []domain.Slideshow{}, Slides: []domain.Slide{}}
	}
	return f
}

func (s *FeedService) load(ctx context.Context) (*Feed, error) {
	shows, err := s.shows.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	slides, err := s.slides.ListActiveFeed(ctx)
	if err != nil {
		return nil, err
	}
	if shows == nil {
		shows = []domain.Slideshow{}
	}
	if slides == nil {
		slides = []domain.Slide{}
	}
	return &Feed{Slideshows: shows, Slides: slides}, nil
}

// RecordSlideView 公共打点：未知 id 静默吞掉（只留日志），绝不打断大屏循环
func (s *FeedService) RecordSlideView(ctx context.Context, id string) {
	affected, err := s.slides.IncrementView(ctx, id)
	if err != nil {
		s.log.Error("record slide view", zap.String("slide", id), zap.Error(err))
		return
	}
	if affected == 0 {
		s.log.Warn("view for unknown slide", zap.String("slide", id))
	}
}

func (s *FeedService) RecordShowView(ctx context.Context, id string) {
	affected, err := s.shows.IncrementDisplayCount(ctx, id)
	if err != nil {
		s.log.Error("record slideshow view", zap.String("slideshow", id), zap.Error(err))
		return
	}
	if affected == 0 {
		s.log.Warn("view for unknown slideshow", zap.String("slideshow", id))
	}
}

// MarkSlideNotLoaded 展示端报图加载失败。和打点一样吞掉未知 id，只留日志
func (s *FeedService) MarkSlideNotLoaded(ctx context.Context, id string) {
	affected, err := s.slides.MarkNotLoaded(ctx, id)
	if err != nil {
		s.log.Error("mark slide not loaded", zap.String("slide", id), zap.Error(err))
		return
	}
	if affected == 0 {
		s.log.Warn("load failure for unknown slide", zap.String("slide", id))
	}
}

// Invalidate 管理端写入后主动失效缓存
func (s *FeedService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, feedCacheKey)
	}
}
