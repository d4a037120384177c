package domain

import "time"

type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"size:1024;not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Setting) TableName() string { return "settings" }

// DefaultSettings 首次启动播种一次，之后不覆盖
var DefaultSettings = map[string]string{
	"font_family":           "Arial, sans-serif",
	"title_font_size":       "48",
	"description_font_size": "24",
	"transition_duration":   "5000",
	"company_logo":          "",
	"show_pagination_dots":  "true",
	"rounded_image_edges":   "true",
}
