package handlers

import (
	"net/http"
	"sentinel-backend/internal/models"
	"sentinel-backend/internal/services"
	"sentinel-backend/internal/utils"
	pkgvalidator "sentinel-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type ResumeHandler struct {
	resumeService *services.ResumeService
	validator     *validator.Validate
}

func NewResumeHandler(resumeService *services.ResumeService) *ResumeHandler {
	return &ResumeHandler{
		resumeService: resumeService,
		validator:     pkgvalidator.Get(),
	}
}

func (h *ResumeHandler) GetResumes(c *gin.Context) {
	userID, _ := c.Get("user_id")

	resumes, err := h.resumeService.GetResumes(userID.(uint))
	if err != nil {
		utils.InternalError(c)
		return
	}

	utils.Success(c, resumes)
}

func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, _ := c.Get("user_id")

	file, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "缺少上传文件")
		return
	}

	title := c.PostForm("title")

	resume, err := h.resumeService.CreateResume(userID.(uint), title, file)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "简历上传成功", resume)
}

func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, _ := c.Get("user_id")
	resumeID := c.Param("id")

	resume, events, summary, err := h.resumeService.GetResume(resumeID, userID.(uint))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "简历不存在")
		} else {
			utils.InternalError(c)
		}
		return
	}

	utils.Success(c, gin.H{
		"resume":  resume,
		"events":  events,
		"summary": summary,
	})
}

func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	userID, _ := c.Get("user_id")
	resumeID := c.Param("id")

	var req models.ResumeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	resume, err := h.resumeService.UpdateResume(resumeID, userID.(uint), &req)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "简历不存在")
		} else {
			utils.InternalError(c)
		}
		return
	}

	utils.SuccessWithMessage(c, "简历更新成功", resume)
}

func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, _ := c.Get("user_id")
	resumeID := c.Param("id")

	if err := h.resumeService.DeleteResume(resumeID, userID.(uint)); err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "简历不存在")
		} else {
			utils.InternalError(c)
		}
		return
	}

	utils.SuccessWithMessage(c, "简历删除成功", nil)
}

// GetPublicResume 匿名查看页的数据源，只返回存在与否和渲染必需字段
func (h *ResumeHandler) GetPublicResume(c *gin.Context) {
	resumeID := c.Param("id")

	resume, err := h.resumeService.GetPublicResume(resumeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "简历不存在或已删除")
		} else {
			utils.InternalError(c)
		}
		return
	}

	utils.Success(c, resume)
}
