package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"audti-backend-go/internal/core"
	"audti-backend-go/internal/middleware"
	"audti-backend-go/internal/models"
	"audti-backend-go/internal/templates"
)

// maxTemplateSize bounds the body of a template import.
const maxTemplateSize = 2 << 20

// ChecklistHandler handles API endpoints related to checklist templates.
type ChecklistHandler struct {
	checklists core.ChecklistService
}

// NewChecklistHandler creates a new ChecklistHandler.
func NewChecklistHandler(checklists core.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklists: checklists}
}

// ListItems handles GET /checklists?categories=a,b&grouped=true
func (h *ChecklistHandler) ListItems(c *gin.Context) {
	session := middleware.SessionFrom(c)
	categories := splitList(c.QueryArray("categories"))

	grouped, _ := strconv.ParseBool(c.DefaultQuery("grouped", "false"))
	if grouped {
		groups, err := h.checklists.Grouped(c.Request.Context(), session, categories)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, groups)
		return
	}

	items, err := h.checklists.List(c.Request.Context(), session, categories)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListCategories handles GET /checklists/categories
func (h *ChecklistHandler) ListCategories(c *gin.Context) {
	categories, err := h.checklists.Categories(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetItem handles GET /checklists/:itemId
func (h *ChecklistHandler) GetItem(c *gin.Context) {
	item, err := h.checklists.Get(c.Request.Context(), middleware.SessionFrom(c), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem handles POST /checklists
func (h *ChecklistHandler) CreateItem(c *gin.Context) {
	var req models.CreateChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	item, err := h.checklists.Create(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// CreateItems handles POST /checklists/bulk. Either every item is created or none.
func (h *ChecklistHandler) CreateItems(c *gin.Context) {
	var reqs []models.CreateChecklistItemRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	items, err := h.checklists.CreateMany(c.Request.Context(), middleware.SessionFrom(c), reqs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, items)
}

// UpdateItem handles PUT /checklists/:itemId
func (h *ChecklistHandler) UpdateItem(c *gin.Context) {
	var req models.UpdateChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	item, err := h.checklists.Update(c.Request.Context(), middleware.SessionFrom(c), c.Param("itemId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /checklists/:itemId
func (h *ChecklistHandler) DeleteItem(c *gin.Context) {
	if err := h.checklists.Delete(c.Request.Context(), middleware.SessionFrom(c), c.Param("itemId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteCategory handles DELETE /checklists/categories/:category
func (h *ChecklistHandler) DeleteCategory(c *gin.Context) {
	category := c.Param("category")
	removed, err := h.checklists.DeleteCategory(c.Request.Context(), middleware.SessionFrom(c), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteCategoryResponse{Category: category, Removed: removed})
}

// Import handles POST /checklists/import. The body is a template file whose
// format follows the Content-Type header.
func (h *ChecklistHandler) Import(c *gin.Context) {
	format, err := templates.ParseFormat(c.ContentType())
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTemplateSize))
	if err != nil {
		badRequest(c, "Failed to read request body", err)
		return
	}
	reqs, err := templates.Decode(data, format)
	if err != nil {
		respondError(c, err)
		return
	}
	imported, err := h.checklists.Import(c.Request.Context(), middleware.SessionFrom(c), reqs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ImportResponse{Imported: imported})
}

// Export handles GET /checklists/export?format=json|yaml
func (h *ChecklistHandler) Export(c *gin.Context) {
	format, err := templates.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.checklists.List(c.Request.Context(), middleware.SessionFrom(c), nil)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := templates.Encode(items, format)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("checklists-%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), data)
}
