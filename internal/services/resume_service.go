package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sentinel-backend/internal/models"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ResumeService struct {
	db         *gorm.DB
	uploadPath string
	maxSize    int64
}

func NewResumeService(db *gorm.DB, uploadPath string, maxSize int64) *ResumeService {
	return &ResumeService{db: db, uploadPath: uploadPath, maxSize: maxSize}
}

// GetResumes 返回用户的所有简历及浏览统计，供仪表盘列表使用
func (s *ResumeService) GetResumes(userID uint) ([]models.ResumeWithStats, error) {
	var resumes []models.Resume
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&resumes).Error; err != nil {
		return nil, err
	}

	type statRow struct {
		ResumeID      string
		ViewCount     int64
		TotalDuration int64
	}
	var rows []statRow
	if err := s.db.Model(&models.AnalyticsEvent{}).
		Select("resume_id, COUNT(*) AS view_count, COALESCE(SUM(duration_seconds), 0) AS total_duration").
		Where("event_type = ? AND resume_id IN (SELECT id FROM resumes WHERE user_id = ? AND deleted_at IS NULL)",
			models.EventTypeView, userID).
		Group("resume_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := make(map[string]statRow, len(rows))
	for _, row := range rows {
		stats[row.ResumeID] = row
	}

	result := make([]models.ResumeWithStats, 0, len(resumes))
	for _, resume := range resumes {
		item := models.ResumeWithStats{Resume: resume}
		if row, ok := stats[resume.ID]; ok {
			item.ViewCount = row.ViewCount
			item.TotalDuration = row.TotalDuration
		}
		result = append(result, item)
	}

	return result, nil
}

// CreateResume 保存上传的 PDF 并创建简历记录
func (s *ResumeService) CreateResume(userID uint, title string, file *multipart.FileHeader) (*models.Resume, error) {
	if file.Size > s.maxSize {
		return nil, fmt.Errorf("文件大小超过限制")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return nil, fmt.Errorf("仅支持 PDF 文件")
	}

	if title == "" {
		title = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}

	filename := uuid.NewString() + ext
	destPath := filepath.Join(s.uploadPath, "resumes", filename)

	if err := s.saveFile(file, destPath); err != nil {
		return nil, err
	}

	resume := models.Resume{
		UserID:       userID,
		Title:        title,
		FileURL:      "/uploads/resumes/" + filename,
		NotifyOnView: true,
	}

	if err := s.db.Create(&resume).Error; err != nil {
		// 入库失败时清掉已落盘的文件
		os.Remove(destPath)
		return nil, err
	}

	return &resume, nil
}

func (s *ResumeService) saveFile(file *multipart.FileHeader, destPath string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// GetResume 返回简历详情、最近事件列表和统计摘要
func (s *ResumeService) GetResume(resumeID string, userID uint) (*models.Resume, []models.AnalyticsEvent, *models.AnalyticsSummary, error) {
	var resume models.Resume
	if err := s.db.Where("id = ? AND user_id = ?", resumeID, userID).First(&resume).Error; err != nil {
		return nil, nil, nil, err
	}

	var events []models.AnalyticsEvent
	if err := s.db.Where("resume_id = ?", resumeID).
		Order("created_at DESC").Limit(200).Find(&events).Error; err != nil {
		return nil, nil, nil, err
	}

	summary, err := s.buildSummary(resumeID)
	if err != nil {
		return nil, nil, nil, err
	}

	return &resume, events, summary, nil
}

func (s *ResumeService) buildSummary(resumeID string) (*models.AnalyticsSummary, error) {
	summary := &models.AnalyticsSummary{}

	if err := s.db.Model(&models.AnalyticsEvent{}).
		Where("resume_id = ? AND event_type = ?", resumeID, models.EventTypeView).
		Count(&summary.TotalViews).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.AnalyticsEvent{}).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Where("resume_id = ? AND event_type = ?", resumeID, models.EventTypeView).
		Scan(&summary.TotalDuration).Error; err != nil {
		return nil, err
	}

	if summary.TotalViews > 0 {
		summary.AvgDurationSeconds = float64(summary.TotalDuration) / float64(summary.TotalViews)
	}

	groupBy := func(column string) ([]models.LabelCount, error) {
		var rows []models.LabelCount
		err := s.db.Model(&models.AnalyticsEvent{}).
			Select(column+" AS label, COUNT(*) AS count").
			Where("resume_id = ? AND event_type = ? AND "+column+" IS NOT NULL AND "+column+" <> ''",
				resumeID, models.EventTypeView).
			Group(column).Order("count DESC").Limit(5).Scan(&rows).Error
		return rows, err
	}

	var err error
	if summary.Countries, err = groupBy("country"); err != nil {
		return nil, err
	}
	if summary.Devices, err = groupBy("device_type"); err != nil {
		return nil, err
	}
	if summary.Browsers, err = groupBy("browser"); err != nil {
		return nil, err
	}

	return summary, nil
}

// UpdateResume 修改标题或通知开关
func (s *ResumeService) UpdateResume(resumeID string, userID uint, req *models.ResumeUpdateRequest) (*models.Resume, error) {
	var resume models.Resume
	if err := s.db.Where("id = ? AND user_id = ?", resumeID, userID).First(&resume).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.NotifyOnView != nil {
		updates["notify_on_view"] = *req.NotifyOnView
	}

	if len(updates) > 0 {
		if err := s.db.Model(&resume).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &resume, nil
}

// DeleteResume 删除简历及其全部事件，文件删除失败只记日志
func (s *ResumeService) DeleteResume(resumeID string, userID uint) error {
	var resume models.Resume

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", resumeID, userID).First(&resume).Error; err != nil {
			return err
		}

		if err := tx.Where("resume_id = ?", resumeID).Delete(&models.AnalyticsEvent{}).Error; err != nil {
			return err
		}

		return tx.Delete(&resume).Error
	})
	if err != nil {
		return err
	}

	if resume.FileURL != "" {
		localPath := filepath.Join(s.uploadPath, strings.TrimPrefix(resume.FileURL, "/uploads/"))
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", localPath).Warn("删除简历文件失败")
		}
	}

	return nil
}

// GetPublicResume 公开查看接口，只暴露渲染所需字段
func (s *ResumeService) GetPublicResume(resumeID string) (*models.PublicResume, error) {
	var resume models.Resume
	if err := s.db.Select("id", "title", "file_url").
		Where("id = ?", resumeID).First(&resume).Error; err != nil {
		return nil, err
	}

	return &models.PublicResume{
		ID:      resume.ID,
		Title:   resume.Title,
		FileURL: resume.FileURL,
	}, nil
}
