package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lost-university/backend/internal/dto"
	"lost-university/backend/internal/service"
	"lost-university/backend/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// GetCurrentSemester 获取当前学期
// GET /api/v1/semesters/current
func (h *SemesterHandler) GetCurrentSemester(c *gin.Context) {
	response.OK(c, h.semesterSvc.Current())
}

// NextPossible 模块最早可修学期
// GET /api/v1/semesters/next-possible?term=FS&start=HS23
func (h *SemesterHandler) NextPossible(c *gin.Context) {
	var req dto.NextPossibleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.semesterSvc.NextPossible(&req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}
	response.OK(c, result)
}

// Range 连续学期序列
// GET /api/v1/semesters?start=HS23&count=6
func (h *SemesterHandler) Range(c *gin.Context) {
	var req dto.SemesterRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.semesterSvc.Range(&req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}
	response.OK(c, result)
}

// handleSemesterError 统一处理学期模块业务错误
func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSemester):
		response.BadRequest(c, 14001, "学期格式无效")
	case errors.Is(err, service.ErrInvalidTerm):
		response.BadRequest(c, 14002, "开课学期无效")
	default:
		response.InternalError(c)
	}
}
