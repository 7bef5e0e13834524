// internal/services/stores.go - 协作方接口的 GORM 实现
package services

import (
	"context"
	"errors"
	"sentinel-backend/internal/models"

	"gorm.io/gorm"
)

type gormResumeStore struct {
	db *gorm.DB
}

func NewResumeStore(db *gorm.DB) ResumeStore {
	return &gormResumeStore{db: db}
}

func (s *gormResumeStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Resume{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetNotifyInfo 简历不存在时返回 (nil, nil)，通知路径按无操作处理
func (s *gormResumeStore) GetNotifyInfo(ctx context.Context, id string) (*ResumeNotifyInfo, error) {
	var resume models.Resume
	err := s.db.WithContext(ctx).Select("title", "notify_on_view", "user_id").
		Where("id = ?", id).First(&resume).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ResumeNotifyInfo{
		Title:        resume.Title,
		NotifyOnView: resume.NotifyOnView,
		UserID:       resume.UserID,
	}, nil
}

type gormEventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) EventStore {
	return &gormEventStore{db: db}
}

func (s *gormEventStore) Insert(ctx context.Context, event *models.AnalyticsEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

// UpdateDuration 按行级原子更新时长。未命中任何行时不报错，与插入端的存在性约束一致。
func (s *gormEventStore) UpdateDuration(ctx context.Context, id string, seconds int) error {
	return s.db.WithContext(ctx).Model(&models.AnalyticsEvent{}).
		Where("id = ?", id).Update("duration_seconds", seconds).Error
}

type gormEmailResolver struct {
	db *gorm.DB
}

func NewEmailResolver(db *gorm.DB) EmailResolver {
	return &gormEmailResolver{db: db}
}

func (r *gormEmailResolver) Email(ctx context.Context, userID uint) (string, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("email").
		Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.Email, nil
}
