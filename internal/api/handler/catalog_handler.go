package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"lost-university/backend/internal/dto"
	"lost-university/backend/internal/service"
	pkgerrors "lost-university/backend/pkg/errors"
	"lost-university/backend/pkg/response"
)

// CatalogHandler 模块目录 HTTP 处理器
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListModules 获取模块列表
// GET /api/v1/modules?keyword=&term=&include_inactive=&start=
func (h *CatalogHandler) ListModules(c *gin.Context) {
	var req dto.ModuleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	modules, err := h.catalogSvc.ListModules(c.Request.Context(), &req)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, gin.H{"list": modules})
}

// GetModule 获取模块详情
// GET /api/v1/modules/:id
func (h *CatalogHandler) GetModule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模块ID不能为空")
		return
	}

	module, err := h.catalogSvc.GetModule(c.Request.Context(), id)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, module)
}

// ListCategories 获取学分类别
// GET /api/v1/categories?studienordnung=23
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var req dto.StudienordnungRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	categories, err := h.catalogSvc.ListCategories(c.Request.Context(), req.Studienordnung)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, gin.H{"list": categories})
}

// ListFocuses 获取专业方向
// GET /api/v1/focuses?studienordnung=23
func (h *CatalogHandler) ListFocuses(c *gin.Context) {
	var req dto.StudienordnungRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	focuses, err := h.catalogSvc.ListFocuses(c.Request.Context(), req.Studienordnung)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, gin.H{"list": focuses})
}

// Sync 从目录仓库同步
// POST /api/v1/catalog/sync
func (h *CatalogHandler) Sync(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	subject, ok := MustGetSubject(c)
	if !ok {
		return
	}

	result, err := h.catalogSvc.Sync(c.Request.Context(), req.Studienordnung, subject)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, result)
}

// handleCatalogError 统一处理目录模块业务错误
func (h *CatalogHandler) handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, 21001, "模块不存在")
	case errors.Is(err, service.ErrInvalidStudienordnung):
		response.BadRequest(c, 21002, "学习规章无效")
	case errors.Is(err, service.ErrInvalidSemester):
		response.BadRequest(c, 14001, "学期格式无效")
	case errors.Is(err, service.ErrEmptyCatalog):
		response.Error(c, http.StatusBadGateway, 21003, "目录数据为空")
	case errors.Is(err, pkgerrors.ErrUpstream):
		response.Error(c, http.StatusBadGateway, 21004, "目录仓库不可用")
	default:
		response.InternalError(c)
	}
}
