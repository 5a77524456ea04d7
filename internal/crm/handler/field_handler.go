package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/crm/service"
)

type FieldHandler struct {
	catalog *service.CatalogService
}

func NewFieldHandler(catalog *service.CatalogService) *FieldHandler {
	return &FieldHandler{catalog: catalog}
}

// List GET /api/v1/fields
func (h *FieldHandler) List(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active_only", "false"))
	fields, err := h.catalog.ListFields(c.Request.Context(), activeOnly)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{
		"base_fields":   service.BaseFields,
		"custom_fields": fields,
	})
}

// Create POST /api/v1/fields
func (h *FieldHandler) Create(c *gin.Context) {
	var req service.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	field, err := h.catalog.CreateField(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, field)
}

// Get GET /api/v1/fields/:id
func (h *FieldHandler) Get(c *gin.Context) {
	field, err := h.catalog.GetField(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, field)
}

// Update PUT /api/v1/fields/:id
func (h *FieldHandler) Update(c *gin.Context) {
	var req service.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	field, err := h.catalog.UpdateField(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, field)
}

// Deactivate DELETE /api/v1/fields/:id
func (h *FieldHandler) Deactivate(c *gin.Context) {
	if err := h.catalog.DeactivateField(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
