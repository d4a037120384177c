package domain

import (
	"regexp"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// FolderNameRe 上传目录名白名单：小写字母、数字、连字符
var FolderNameRe = regexp.MustCompile(`^[a-z0-9-]+$`)

type Slideshow struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Title        string    `gorm:"size:191;not null" json:"title"`
	Description  string    `gorm:"size:1024" json:"description"`
	FolderName   string    `gorm:"uniqueIndex;size:64;not null" json:"folderName"`
	Status       string    `gorm:"size:16;not null;default:active;index" json:"status"`
	DisplayOrder int       `gorm:"not null;default:0" json:"displayOrder"`
	DisplayCount int64     `gorm:"not null;default:0" json:"displayCount"`
	CreatedBy    string    `gorm:"size:36;index" json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Slides []Slide `gorm:"foreignKey:SlideshowID;constraint:OnDelete:CASCADE" json:"slides,omitempty"`
}

func (Slideshow) TableName() string { return "slideshows" }

type Slide struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	SlideshowID  string     `gorm:"size:36;not null;index:idx_slides_show_order,priority:1" json:"slideshowId"`
	Title        string     `gorm:"size:191" json:"title"`
	Description  string     `gorm:"size:1024" json:"description"`
	ImagePath    string     `gorm:"size:255" json:"imagePath"` // 上传文件相对路径，与 ImageURL 二选一
	ImageURL     string     `gorm:"size:512" json:"imageUrl"`
	DisplayOrder int        `gorm:"not null;default:0;index:idx_slides_show_order,priority:2" json:"displayOrder"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`
	IsLoaded     bool       `gorm:"not null;default:true" json:"isLoaded"` // 展示端报过加载失败则为 false
	ViewCount    int64      `gorm:"not null;default:0" json:"viewCount"`
	LastShownAt  *time.Time `json:"lastShownAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (Slide) TableName() string { return "slides" }
