package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventTypeView   = "view"
	EventTypeScroll = "scroll"
	EventTypeExit   = "exit"
)

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

// AnalyticsEvent 一条浏览记录，对应一次 (简历, 浏览会话)。
// 除 duration_seconds 外的字段创建后不再修改。
type AnalyticsEvent struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey"`
	ResumeID        string    `json:"resume_id" gorm:"type:uuid;not null;index"`
	EventType       string    `json:"event_type" gorm:"size:20;not null"`
	IPAddress       string    `json:"ip_address" gorm:"size:45"`
	City            *string   `json:"city" gorm:"size:100"`
	Country         *string   `json:"country" gorm:"size:100"`
	DeviceType      string    `json:"device_type" gorm:"size:20;default:unknown"`
	Browser         string    `json:"browser" gorm:"size:50"`
	OS              string    `json:"os" gorm:"size:50"`
	DurationSeconds int       `json:"duration_seconds" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
}

func (e *AnalyticsEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// TrackRequest 追踪接口请求体。带 event_id 时为心跳更新，否则为新建。
type TrackRequest struct {
	ResumeID        string `json:"resume_id"`
	EventType       string `json:"event_type"`
	DeviceType      string `json:"device_type"`
	Browser         string `json:"browser"`
	OS              string `json:"os"`
	DurationSeconds int    `json:"duration_seconds"`
	EventID         string `json:"event_id"`
}

// LabelCount 聚合统计的一行，如某国家/设备的浏览数
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AnalyticsSummary 单份简历的统计摘要
type AnalyticsSummary struct {
	TotalViews         int64        `json:"total_views"`
	TotalDuration      int64        `json:"total_duration_seconds"`
	AvgDurationSeconds float64      `json:"avg_duration_seconds"`
	Countries          []LabelCount `json:"countries"`
	Devices            []LabelCount `json:"devices"`
	Browsers           []LabelCount `json:"browsers"`
}
