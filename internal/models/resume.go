package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Resume struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uint           `json:"user_id" gorm:"not null;index"`
	Title        string         `json:"title" gorm:"size:255;not null"`
	FileURL      string         `json:"file_url" gorm:"size:500;not null"`
	NotifyOnView bool           `json:"notify_on_view" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// 关联
	User   User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Events []AnalyticsEvent `json:"events,omitempty" gorm:"foreignKey:ResumeID"`
}

func (r *Resume) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type ResumeUpdateRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=255"`
	NotifyOnView *bool   `json:"notify_on_view"`
}

// ResumeWithStats 仪表盘列表项：简历及其浏览统计
type ResumeWithStats struct {
	Resume
	ViewCount     int64 `json:"view_count"`
	TotalDuration int64 `json:"total_duration_seconds"`
}

// PublicResume 公开访问时仅暴露必要字段
type PublicResume struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	FileURL string `json:"file_url"`
}
