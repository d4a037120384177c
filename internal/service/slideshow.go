package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"go-signage-cms/internal/domain"
	"go-signage-cms/internal/repo"
	"go-signage-cms/internal/storage"
	"go-signage-cms/pkg/utils"
)

// SlideshowService 合集/幻灯片的全部写入规则都在这里收口
type SlideshowService struct {
	shows  *repo.SlideshowRepo
	slides *repo.SlideRepo
	files  storage.Provider
	feed   *FeedService
	log    *zap.Logger
}

func NewSlideshowService(shows *repo.SlideshowRepo, slides *repo.SlideRepo, files storage.Provider, feed *FeedService, log *zap.Logger) *SlideshowService {
	return &SlideshowService{shows: shows, slides: slides, files: files, feed: feed, log: log}
}

// reservedFolders 上传根目录下被系统占用的目录名，合集不得使用
var reservedFolders = map[string]struct{}{
	storage.LogoFolder: {},
}

type CreateSlideshowInput struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	FolderName   string `json:"folderName" binding:"required"`
	Status       string `json:"status"`
	DisplayOrder *int   `json:"displayOrder"`
}

func (s *SlideshowService) Create(ctx context.Context, p domain.Principal, in CreateSlideshowInput) (*domain.Slideshow, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.Validation("title is required")
	}
	if !domain.FolderNameRe.MatchString(in.FolderName) {
		return nil, domain.Validation("folder name must contain only lowercase letters, numbers, and hyphens")
	}
	if _, taken := reservedFolders[in.FolderName]; taken {
		return nil, domain.Validation("folder name is reserved")
	}
	status := in.Status
	if status == "" {
		status = domain.StatusActive
	}
	if status != domain.StatusActive && status != domain.StatusInactive {
		return nil, domain.Validation("invalid status")
	}

	order := 0
	if in.DisplayOrder != nil {
		order = *in.DisplayOrder
	} else if next, err := s.shows.NextDisplayOrder(ctx); err != nil {
		// 排序号取不到就排到 0，建合集本身不拦
		s.log.Warn("next display order", zap.Error(err))
	} else {
		order = next
	}

	show := &domain.Slideshow{
		ID:           utils.NewID(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		FolderName:   in.FolderName,
		Status:       status,
		DisplayOrder: order,
		CreatedBy:    p.ID,
	}
	if err := s.shows.Create(ctx, show); err != nil {
		if isDupKey(err) {
			return nil, domain.Conflict("folder name already exists")
		}
		return nil, domain.Storage("create slideshow failed", err)
	}
	if err := s.files.EnsureFolder(show.FolderName); err != nil {
		// 目录建失败不回滚记录，首次上传时还会再试
		s.log.Warn("ensure upload folder", zap.String("folder", show.FolderName), zap.Error(err))
	}
	s.feed.Invalidate(ctx)
	return show, nil
}

// List 管理员全量，其他人只看自己的。过滤是权限语义，永远在服务端做
func (s *SlideshowService) List(ctx context.Context, p domain.Principal) ([]domain.Slideshow, error) {
	owner := ""
	if !p.IsAdmin() {
		owner = p.ID
	}
	shows, err := s.shows.List(ctx, owner)
	if err != nil {
		return nil, domain.Storage("list slideshows failed", err)
	}
	return shows, nil
}

func (s *SlideshowService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Slideshow, error) {
	show, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	slides, err := s.slides.ListByShow(ctx, id)
	if err != nil {
		return nil, domain.Storage("list slides failed", err)
	}
	show.Slides = slides
	return show, nil
}

type UpdateSlideshowInput struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	DisplayOrder *int    `json:"displayOrder"`
}

// Update 部分更新：没给的字段保持原值
func (s *SlideshowService) Update(ctx context.Context, p domain.Principal, id string, in UpdateSlideshowInput) (*domain.Slideshow, error) {
	if _, err := s.owned(ctx, p, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, domain.Validation("title is required")
		}
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Status != nil {
		if *in.Status != domain.StatusActive && *in.Status != domain.StatusInactive {
			return nil, domain.Validation("invalid status")
		}
		fields["status"] = *in.Status
	}
	if in.DisplayOrder != nil {
		fields["display_order"] = *in.DisplayOrder
	}
	if len(fields) > 0 {
		if _, err := s.shows.UpdateFields(ctx, id, fields); err != nil {
			return nil, domain.Storage("update slideshow failed", err)
		}
		s.feed.Invalidate(ctx)
	}
	show, err := s.shows.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("reload slideshow failed", err)
	}
	return show, nil
}

// Delete 级联删片（一个事务）。上传文件尽力清理，清不掉只记日志
func (s *SlideshowService) Delete(ctx context.Context, p domain.Principal, id string) error {
	show, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}
	slides, err := s.slides.ListByShow(ctx, id)
	if err != nil {
		return domain.Storage("list slides failed", err)
	}

	if _, err := s.shows.DeleteCascade(ctx, id); err != nil {
		return domain.Storage("delete slideshow failed", err)
	}

	for _, sl := range slides {
		if sl.ImagePath == "" {
			continue
		}
		if err := s.files.Delete(sl.ImagePath); err != nil {
			s.log.Warn("remove slide file", zap.String("path", sl.ImagePath), zap.Error(err))
		}
	}
	if err := s.files.RemoveFolder(show.FolderName); err != nil {
		s.log.Warn("remove upload folder", zap.String("folder", show.FolderName), zap.Error(err))
	}
	s.feed.Invalidate(ctx)
	return nil
}

func (s *SlideshowService) ListSlides(ctx context.Context, p domain.Principal, showID string) ([]domain.Slide, error) {
	if _, err := s.owned(ctx, p, showID); err != nil {
		return nil, err
	}
	slides, err := s.slides.ListByShow(ctx, showID)
	if err != nil {
		return nil, domain.Storage("list slides failed", err)
	}
	return slides, nil
}

type AddSlidesInput struct {
	Title        string
	Description  string
	ImageURL     string
	Files        []*multipart.FileHeader
	DisplayOrder *int
}

// AddSlides 上传文件或外链二选一；顺序默认接在现有片子后面
func (s *SlideshowService) AddSlides(ctx context.Context, p domain.Principal, showID string, in AddSlidesInput) ([]domain.Slide, error) {
	show, err := s.owned(ctx, p, showID)
	if err != nil {
		return nil, err
	}
	hasFiles := len(in.Files) > 0
	hasURL := strings.TrimSpace(in.ImageURL) != ""
	if hasFiles == hasURL {
		return nil, domain.Validation("either upload images or provide an image url")
	}

	n, err := s.slides.CountByShow(ctx, showID)
	if err != nil {
		return nil, domain.Storage("count slides failed", err)
	}
	order := int(n)
	if in.DisplayOrder != nil {
		order = *in.DisplayOrder
	}

	var created []domain.Slide
	if hasURL {
		created = append(created, domain.Slide{
			ID:           utils.NewID(),
			SlideshowID:  showID,
			Title:        defaultTitle(in.Title, order),
			Description:  in.Description,
			ImageURL:     strings.TrimSpace(in.ImageURL),
			DisplayOrder: order,
			IsActive:     true,
			IsLoaded:     true,
		})
	} else {
		for _, fh := range in.Files {
			path, err := s.files.SaveImage(show.FolderName, fh)
			if err != nil {
				return nil, err
			}
			title := in.Title
			if title == "" {
				title = fh.Filename
			}
			created = append(created, domain.Slide{
				ID:           utils.NewID(),
				SlideshowID:  showID,
				Title:        title,
				Description:  in.Description,
				ImagePath:    path,
				DisplayOrder: order,
				IsActive:     true,
				IsLoaded:     true,
			})
			order++
		}
	}

	if err := s.slides.CreateBatch(ctx, created); err != nil {
		return nil, domain.Storage("create slides failed", err)
	}
	s.feed.Invalidate(ctx)
	return created, nil
}

type UpdateSlideInput struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl"`
	DisplayOrder *int    `json:"displayOrder"`
	IsActive     *bool   `json:"isActive"`
}

func (s *SlideshowService) UpdateSlide(ctx context.Context, p domain.Principal, slideID string, in UpdateSlideInput) (*domain.Slide, error) {
	slide, err := s.ownedSlide(ctx, p, slideID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	oldPath := ""
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.ImageURL != nil {
		url := strings.TrimSpace(*in.ImageURL)
		// 清空外链会让片子两头都没图，不收
		if url == "" {
			return nil, domain.Validation("image url must not be empty")
		}
		fields["image_url"] = url
		fields["image_path"] = ""
		oldPath = slide.ImagePath
	}
	if in.DisplayOrder != nil {
		fields["display_order"] = *in.DisplayOrder
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if len(fields) > 0 {
		// 任何编辑都复位加载失败标记
		fields["is_loaded"] = true
		if _, err := s.slides.UpdateFields(ctx, slideID, fields); err != nil {
			return nil, domain.Storage("update slide failed", err)
		}
		// 换成外链后原上传文件不再被引用，落库成功才清
		if oldPath != "" {
			if err := s.files.Delete(oldPath); err != nil {
				s.log.Warn("remove replaced file", zap.String("path", oldPath), zap.Error(err))
			}
		}
		s.feed.Invalidate(ctx)
	}
	out, err := s.slides.FindByID(ctx, slideID)
	if err != nil {
		return nil, domain.Storage("reload slide failed", err)
	}
	return out, nil
}

// ReplaceSlideImage 上传新图替换旧引用（旧上传文件尽力清理）
func (s *SlideshowService) ReplaceSlideImage(ctx context.Context, p domain.Principal, slideID string, fh *multipart.FileHeader) (*domain.Slide, error) {
	slide, err := s.ownedSlide(ctx, p, slideID)
	if err != nil {
		return nil, err
	}
	show, err := s.shows.FindByID(ctx, slide.SlideshowID)
	if err != nil || show == nil {
		return nil, domain.Storage("load slideshow failed", err)
	}
	path, err := s.files.SaveImage(show.FolderName, fh)
	if err != nil {
		return nil, err
	}
	if _, err := s.slides.UpdateFields(ctx, slideID, map[string]any{
		"image_path": path,
		"image_url":  "",
		"is_loaded":  true,
	}); err != nil {
		// 落库失败，新文件成了孤儿，顺手清掉
		if derr := s.files.Delete(path); derr != nil {
			s.log.Warn("remove orphan upload", zap.String("path", path), zap.Error(derr))
		}
		return nil, domain.Storage("update slide failed", err)
	}
	// 旧上传文件落库成功才清
	if slide.ImagePath != "" && slide.ImagePath != path {
		if err := s.files.Delete(slide.ImagePath); err != nil {
			s.log.Warn("remove replaced file", zap.String("path", slide.ImagePath), zap.Error(err))
		}
	}
	s.feed.Invalidate(ctx)
	return s.slides.FindByID(ctx, slideID)
}

// DeleteSlide 删最后一张也不动所属合集
func (s *SlideshowService) DeleteSlide(ctx context.Context, p domain.Principal, slideID string) error {
	slide, err := s.ownedSlide(ctx, p, slideID)
	if err != nil {
		return err
	}
	if _, err := s.slides.Delete(ctx, slideID); err != nil {
		return domain.Storage("delete slide failed", err)
	}
	if slide.ImagePath != "" {
		if err := s.files.Delete(slide.ImagePath); err != nil {
			s.log.Warn("remove slide file", zap.String("path", slide.ImagePath), zap.Error(err))
		}
	}
	s.feed.Invalidate(ctx)
	return nil
}

// owned 不存在 → 404；存在但既不是 owner 也不是 admin → 403
func (s *SlideshowService) owned(ctx context.Context, p domain.Principal, id string) (*domain.Slideshow, error) {
	show, err := s.shows.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("load slideshow failed", err)
	}
	if show == nil {
		return nil, domain.NotFound("slideshow not found")
	}
	if !p.IsAdmin() && show.CreatedBy != p.ID {
		return nil, domain.Forbidden("not your slideshow")
	}
	return show, nil
}

func (s *SlideshowService) ownedSlide(ctx context.Context, p domain.Principal, slideID string) (*domain.Slide, error) {
	slide, err := s.slides.FindByID(ctx, slideID)
	if err != nil {
		return nil, domain.Storage("load slide failed", err)
	}
	if slide == nil {
		return nil, domain.NotFound("slide not found")
	}
	if _, err := s.owned(ctx, p, slide.SlideshowID); err != nil {
		return nil, err
	}
	return slide, nil
}

func defaultTitle(title string, order int) string {
	if title != "" {
		return title
	}
	return fmt.Sprintf("Slide %d", order+1)
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey，避免驱动差异
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "unique failed")
}
