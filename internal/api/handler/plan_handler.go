package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"lost-university/backend/internal/dto"
	"lost-university/backend/internal/service"
	"lost-university/backend/pkg/response"
)

// PlanHandler 学习计划 HTTP 处理器
type PlanHandler struct {
	planSvc     service.PlanService
	progressSvc service.ProgressService
	exportSvc   service.ExportService
}

// NewPlanHandler 创建 PlanHandler
func NewPlanHandler(planSvc service.PlanService, progressSvc service.ProgressService, exportSvc service.ExportService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc, progressSvc: progressSvc, exportSvc: exportSvc}
}

// Decode 解析计划文本
// POST /api/v1/plans/decode
func (h *PlanHandler) Decode(c *gin.Context) {
	req, ok := bindPlanText(c)
	if !ok {
		return
	}

	result, err := h.planSvc.Decode(c.Request.Context(), SessionID(c), req.Text)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, result)
}

// Session 恢复当前会话最近一次的计划
// GET /api/v1/plans/session
func (h *PlanHandler) Session(c *gin.Context) {
	result, err := h.planSvc.Decode(c.Request.Context(), SessionID(c), "")
	if err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, result)
}

// Encode 生成计划的规范文本
// POST /api/v1/plans/encode
func (h *PlanHandler) Encode(c *gin.Context) {
	var req dto.EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.planSvc.Encode(c.Request.Context(), SessionID(c), &req.Plan)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, result)
}

// Validate 校验计划
// POST /api/v1/plans/validate
func (h *PlanHandler) Validate(c *gin.Context) {
	req, ok := bindPlanText(c)
	if !ok {
		return
	}

	result, err := h.planSvc.Validate(c.Request.Context(), SessionID(c), req.Text)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, result)
}

// Progress 学分与专业方向进度
// POST /api/v1/plans/progress
func (h *PlanHandler) Progress(c *gin.Context) {
	req, ok := bindPlanText(c)
	if !ok {
		return
	}

	result, err := h.progressSvc.Progress(c.Request.Context(), SessionID(c), req.Text)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, result)
}

// Export 导出计划
// POST /api/v1/plans/export?format=xlsx|ics
func (h *PlanHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "导出格式无效")
		return
	}
	body, ok := bindPlanText(c)
	if !ok {
		return
	}

	buf, filename, contentType, err := h.exportSvc.ExportPlan(c.Request.Context(), SessionID(c), body.Text, req.Format)
	if err != nil {
		handlePlanError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// bindPlanText 请求体可以为空（使用会话中的计划）
func bindPlanText(c *gin.Context) (*dto.PlanTextRequest, bool) {
	var req dto.PlanTextRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "参数校验失败")
		return nil, false
	}
	return &req, true
}

// handlePlanError 统一处理计划、进度与导出的业务错误
func handlePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoPlan):
		response.NotFound(c, 20001, "没有可用的计划")
	case errors.Is(err, service.ErrInvalidModuleID):
		response.BadRequest(c, 20002, "模块ID包含非法字符")
	case errors.Is(err, service.ErrInvalidSemester):
		response.BadRequest(c, 14001, "学期格式无效")
	case errors.Is(err, service.ErrExportFormat):
		response.BadRequest(c, 22001, "不支持的导出格式")
	case errors.Is(err, service.ErrExportEmptyPlan):
		response.BadRequest(c, 22002, "计划中没有模块")
	case errors.Is(err, service.ErrExportNoStart):
		response.BadRequest(c, 22003, "导出日历需要设置入学学期")
	default:
		response.InternalError(c)
	}
}
