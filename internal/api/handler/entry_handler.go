package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Yvesthior/moncareme-agd/internal/dto"
	"github.com/Yvesthior/moncareme-agd/internal/service"
	"github.com/Yvesthior/moncareme-agd/pkg/response"
)

// ── 周记录模块错误码 ──

const (
	codeEntryNotFound    = 20001
	codeDuplicateWeek    = 20002
	codeEntryForbidden   = 20003
	codeInvalidDateRange = 20004
	codeDayOutOfRange    = 20005
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// EntryHandler 周记录模块 HTTP 处理器
type EntryHandler struct {
	entrySvc  service.EntryService
	exportSvc service.ExportService
}

// NewEntryHandler 创建 EntryHandler
func NewEntryHandler(entrySvc service.EntryService, exportSvc service.ExportService) *EntryHandler {
	return &EntryHandler{entrySvc: entrySvc, exportSvc: exportSvc}
}

// ListEntries 查询区间内的周记录
// GET /api/v1/entries?startDate=&endDate=
func (h *EntryHandler) ListEntries(c *gin.Context) {
	var req dto.EntryRangeQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "startDate 和 endDate 不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entries, err := h.entrySvc.List(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entries)
}

// CreateEntry 创建一周记录（含 7 条空日记录）
// POST /api/v1/entries
// POST /api/v1/entries/create
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "startDate 和 endDate 不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.entrySvc.CreateWeek(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// GetEntry 获取周记录详情
// GET /api/v1/entries/:id
func (h *EntryHandler) GetEntry(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeInvalidParams, "周记录ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.entrySvc.GetWeek(c.Request.Context(), callerID, id)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// UpdateEntry 保存周记录（文字字段 + 日记录勾选）
// PUT /api/v1/entries/:id
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeInvalidParams, "周记录ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	entry, err := h.entrySvc.UpdateWeek(c.Request.Context(), callerID, id, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// ExportEntry 导出周记录
// GET /api/v1/entries/:id/export?format=xlsx|ics
func (h *EntryHandler) ExportEntry(c *gin.Context) {
	id := c.Param("id")
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil || id == "" {
		response.BadRequest(c, response.CodeInvalidParams, "format 仅支持 xlsx 或 ics")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var (
		data        []byte
		filename    string
		contentType string
	)
	switch q.Format {
	case "ics":
		b, name, err := h.exportSvc.ExportICS(c.Request.Context(), callerID, id)
		if err != nil {
			h.handleEntryError(c, err)
			return
		}
		data, filename, contentType = b, name, contentTypeICS
	default:
		buf, name, err := h.exportSvc.ExportXLSX(c.Request.Context(), callerID, id)
		if err != nil {
			h.handleEntryError(c, err)
			return
		}
		data, filename, contentType = buf.Bytes(), name, contentTypeXLSX
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *EntryHandler) handleEntryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		response.NotFound(c, codeEntryNotFound, "周记录不存在")
	case errors.Is(err, service.ErrEntryForbidden):
		response.Forbidden(c, codeEntryForbidden, "无权访问该周记录")
	case errors.Is(err, service.ErrDuplicateWeek):
		response.BadRequest(c, codeDuplicateWeek, "该周记录已存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, response.CodeInvalidParams, "日期格式无效")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, codeInvalidDateRange, "日期区间必须为完整一周")
	case errors.Is(err, service.ErrDayOutOfRange):
		response.BadRequest(c, codeDayOutOfRange, "日记录日期超出本周范围")
	default:
		response.InternalError(c)
	}
}
