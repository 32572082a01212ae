package model

import (
	"time"
)

// Link 短链接模型：slug 与目标 URL 的持久化映射
type Link struct {
	ID         string    `gorm:"type:varchar(36);primarykey" json:"id"`
	URL        string    `gorm:"type:text;not null" json:"url"`
	Slug       string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	ShortLink  string    `gorm:"type:text;not null" json:"short_link"`
	CreatedAt  time.Time `json:"created_at"`
	ClickCount int64     `gorm:"default:0" json:"click_count"`
	QRCode     string    `gorm:"type:text" json:"qr_code,omitempty"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}
