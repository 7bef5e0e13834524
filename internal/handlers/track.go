package handlers

import (
	"errors"
	"net/http"
	"sentinel-backend/internal/models"
	"sentinel-backend/internal/services"
	"strings"

	"github.com/gin-gonic/gin"
)

// TrackHandler 浏览事件采集接口。面向匿名访客，
// 响应格式与其它接口不同：成功 {id}，失败 {error}，方便前端追踪脚本处理。
type TrackHandler struct {
	trackService *services.TrackService
}

func NewTrackHandler(trackService *services.TrackService) *TrackHandler {
	return &TrackHandler{trackService: trackService}
}

func (h *TrackHandler) Track(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	if req.ResumeID == "" || req.EventType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume_id 和 event_type 为必填项"})
		return
	}

	ip := requesterIP(c)
	ua := c.GetHeader("User-Agent")

	id, err := h.trackService.Track(c.Request.Context(), &req, ip, ua)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrResumeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// requesterIP 取转发头的第一跳地址，缺省回环地址
func requesterIP(c *gin.Context) string {
	forwarded := c.GetHeader("X-Forwarded-For")
	if forwarded == "" {
		return "127.0.0.1"
	}
	ip := strings.TrimSpace(strings.Split(forwarded, ",")[0])
	if ip == "" {
		return "127.0.0.1"
	}
	return ip
}
