package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"audti-backend-go/internal/core"
	"audti-backend-go/internal/filter"
	"audti-backend-go/internal/middleware"
	"audti-backend-go/internal/models"
)

// AuditHandler handles API endpoints related to audits.
type AuditHandler struct {
	audits    core.AuditService
	responses core.ResponseService
	reports   core.ReportService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audits core.AuditService, responses core.ResponseService, reports core.ReportService) *AuditHandler {
	return &AuditHandler{audits: audits, responses: responses, reports: reports}
}

// ListAudits handles GET /audits. A failed query answers with the mapped
// status and an empty page.
func (h *AuditHandler) ListAudits(c *gin.Context) {
	q, err := queryFromRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.audits.List(c.Request.Context(), middleware.SessionFrom(c), q)
	if err != nil {
		_ = c.Error(err)
		status, body := errorStatus(err)
		c.JSON(status, AuditListResponse{Result: result, Error: body.Error})
		return
	}
	c.JSON(http.StatusOK, AuditListResponse{Result: result})
}

// FilterOptions handles GET /audits/filters
func (h *AuditHandler) FilterOptions(c *gin.Context) {
	opts, err := h.audits.FilterOptions(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// Reconcile handles POST /audits/reconcile
func (h *AuditHandler) Reconcile(c *gin.Context) {
	var req models.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	form, err := h.audits.Reconcile(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// CreateAudit handles POST /audits
func (h *AuditHandler) CreateAudit(c *gin.Context) {
	var req models.CreateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	audit, err := h.audits.Create(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil && audit != nil {
		respondStoredError(c, err, audit.ID)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, audit)
}

// GetAudit handles GET /audits/:auditId
func (h *AuditHandler) GetAudit(c *gin.Context) {
	audit, err := h.audits.Get(c.Request.Context(), middleware.SessionFrom(c), c.Param("auditId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, audit)
}

// UpdateAudit handles PUT /audits/:auditId
func (h *AuditHandler) UpdateAudit(c *gin.Context) {
	var req models.UpdateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	audit, err := h.audits.Update(c.Request.Context(), middleware.SessionFrom(c), c.Param("auditId"), req)
	if err != nil && audit != nil {
		respondStoredError(c, err, audit.ID)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, audit)
}

// DeleteAudit handles DELETE /audits/:auditId
func (h *AuditHandler) DeleteAudit(c *gin.Context) {
	if err := h.audits.Delete(c.Request.Context(), middleware.SessionFrom(c), c.Param("auditId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetForm handles GET /audits/:auditId/form
func (h *AuditHandler) GetForm(c *gin.Context) {
	form, err := h.audits.Form(c.Request.Context(), middleware.SessionFrom(c), c.Param("auditId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// ListResponses handles GET /audits/:auditId/responses
func (h *AuditHandler) ListResponses(c *gin.Context) {
	responses, err := h.responses.ListByAudit(c.Request.Context(), middleware.SessionFrom(c), c.Param("auditId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

// GetReport handles GET /audits/:auditId/report
func (h *AuditHandler) GetReport(c *gin.Context) {
	report, err := h.reports.AuditReport(c.Request.Context(), middleware.SessionFrom(c), c.Param("auditId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Overview handles GET /reports/overview
func (h *AuditHandler) Overview(c *gin.Context) {
	overview, err := h.reports.Overview(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// queryFromRequest reads the list query parameters. Categories may be
// repeated or comma-separated.
func queryFromRequest(c *gin.Context) (filter.Query, error) {
	q := filter.New()
	q.Search = c.Query("search")
	q.Categories = splitList(c.QueryArray("categories"))
	q.Unit = c.Query("unit")
	q.DateFrom = c.Query("dateFrom")
	q.DateTo = c.Query("dateTo")
	if v := c.Query("sort"); v != "" {
		q.SortField = filter.SortField(v)
	}
	if v := c.Query("order"); v != "" {
		q.SortDir = filter.SortDirection(v)
	}
	var err error
	if q.Page, err = intParam(c, "page", filter.DefaultPage); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(c, "pageSize", filter.DefaultPageSize); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &core.ValidationError{Field: name, Message: "must be an integer"}
	}
	return v, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
