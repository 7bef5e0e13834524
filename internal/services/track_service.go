package services

import (
	"context"
	"errors"
	"fmt"
	"sentinel-backend/internal/geo"
	"sentinel-backend/internal/models"
	"sentinel-backend/internal/useragent"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrRateLimited 触发限流，调用方应返回 429 以便客户端退避
	ErrRateLimited = errors.New("请求频率过高，请稍后再试")
	// ErrResumeNotFound 目标简历不存在，不为其落库任何事件
	ErrResumeNotFound = errors.New("简历不存在")
)

// ResumeStore 简历读取协作方
type ResumeStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	GetNotifyInfo(ctx context.Context, id string) (*ResumeNotifyInfo, error)
}

// ResumeNotifyInfo 通知判定所需的简历信息
type ResumeNotifyInfo struct {
	Title        string
	NotifyOnView bool
	UserID       uint
}

// EventStore 事件行读写协作方
type EventStore interface {
	Insert(ctx context.Context, event *models.AnalyticsEvent) error
	UpdateDuration(ctx context.Context, id string, seconds int) error
}

// EmailResolver 根据用户 ID 解析邮箱，查不到时返回空串
type EmailResolver interface {
	Email(ctx context.Context, userID uint) (string, error)
}

// Sender 邮件发送协作方
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Limiter 见 internal/ratelimit
type Limiter interface {
	Hit(key string) bool
}

// GeoResolver 见 internal/geo
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) geo.Location
}

// TrackService 浏览事件采集管线的编排者。
// limiter、geo、sender 任一为 nil 时对应能力关闭，三者相互独立。
type TrackService struct {
	resumes ResumeStore
	events  EventStore
	emails  EmailResolver
	sender  Sender
	limiter Limiter
	geo     GeoResolver
}

func NewTrackService(resumes ResumeStore, events EventStore, emails EmailResolver, sender Sender, limiter Limiter, geoResolver GeoResolver) *TrackService {
	return &TrackService{
		resumes: resumes,
		events:  events,
		emails:  emails,
		sender:  sender,
		limiter: limiter,
		geo:     geoResolver,
	}
}

// Track 处理一次追踪请求，返回事件 ID（心跳沿用请求中的 event_id）。
// 带 event_id 的请求为心跳更新：只改 duration_seconds，不限流、不做任何富化。
func (s *TrackService) Track(ctx context.Context, req *models.TrackRequest, ip, ua string) (string, error) {
	if req.EventID != "" {
		if err := s.events.UpdateDuration(ctx, req.EventID, req.DurationSeconds); err != nil {
			return "", err
		}
		return req.EventID, nil
	}

	// 限流只作用于新建事件，心跳每 5 秒一次，不能计入
	if s.limiter != nil && !s.limiter.Hit(ip) {
		return "", ErrRateLimited
	}

	// 接口对未认证方开放，先确认简历存在，避免产生孤儿事件
	exists, err := s.resumes.Exists(ctx, req.ResumeID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrResumeNotFound
	}

	var location geo.Location
	if s.geo != nil {
		location = s.geo.Resolve(ctx, ip)
	}

	// 客户端自报的分类优先，缺省时从 UA 兜底解析
	browser := req.Browser
	if browser == "" {
		browser = useragent.Browser(ua)
	}
	osName := req.OS
	if osName == "" {
		osName = useragent.OS(ua)
	}
	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = useragent.Device(ua)
	}

	event := &models.AnalyticsEvent{
		ResumeID:        req.ResumeID,
		EventType:       req.EventType,
		IPAddress:       ip,
		City:            location.City,
		Country:         location.Country,
		DeviceType:      deviceType,
		Browser:         browser,
		OS:              osName,
		DurationSeconds: req.DurationSeconds,
	}

	if err := s.events.Insert(ctx, event); err != nil {
		return "", err
	}

	// 通知与请求生命周期脱钩，失败只记日志，绝不影响响应
	if req.EventType == models.EventTypeView && s.sender != nil {
		go s.notifyView(req.ResumeID, location, browser, osName)
	}

	return event.ID, nil
}

// notifyView 查询通知开关并发送浏览提醒邮件。所有失败静默吞掉。
func (s *TrackService) notifyView(resumeID string, location geo.Location, browser, osName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	info, err := s.resumes.GetNotifyInfo(ctx, resumeID)
	if err != nil {
		logrus.WithError(err).WithField("resume_id", resumeID).Warn("浏览通知：查询简历失败")
		return
	}
	if info == nil || !info.NotifyOnView {
		return
	}
	if s.emails == nil {
		return
	}

	email, err := s.emails.Email(ctx, info.UserID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", info.UserID).Warn("浏览通知：查询邮箱失败")
		return
	}
	if email == "" {
		return
	}

	subject := fmt.Sprintf("有人查看了你的简历「%s」", info.Title)
	html := composeViewNotification(info.Title, location, browser, osName)

	if err := s.sender.Send(ctx, email, subject, html); err != nil {
		logrus.WithError(err).WithField("resume_id", resumeID).Warn("浏览通知：邮件发送失败")
	}
}

func composeViewNotification(title string, location geo.Location, browser, osName string) string {
	place := "未知地区"
	if location.City != nil && location.Country != nil {
		place = fmt.Sprintf("%s, %s", *location.City, *location.Country)
	} else if location.Country != nil {
		place = *location.Country
	}

	return fmt.Sprintf(`<div style="font-family:sans-serif">
<h2>你的简历「%s」刚刚被查看</h2>
<ul>
<li>位置：%s</li>
<li>浏览器：%s</li>
<li>系统：%s</li>
</ul>
<p>登录仪表盘查看完整分析。</p>
</div>`, title, place, browser, osName)
}
