package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/crm/service"
)

type MappingHandler struct {
	mappings *service.MappingService
}

func NewMappingHandler(mappings *service.MappingService) *MappingHandler {
	return &MappingHandler{mappings: mappings}
}

// List GET /api/v1/mappings
func (h *MappingHandler) List(c *gin.Context) {
	mappings, err := h.mappings.List(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, mappings)
}

// Create POST /api/v1/mappings
func (h *MappingHandler) Create(c *gin.Context) {
	var req service.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	mapping, err := h.mappings.Create(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, mapping)
}

// Get GET /api/v1/mappings/:id
func (h *MappingHandler) Get(c *gin.Context) {
	mapping, err := h.mappings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, mapping)
}

// Update PUT /api/v1/mappings/:id
func (h *MappingHandler) Update(c *gin.Context) {
	var req service.UpdateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	mapping, err := h.mappings.Update(c.Request.Context(), c.Param("id"), c.GetString("user_id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, mapping)
}

// SetDefault POST /api/v1/mappings/:id/default
func (h *MappingHandler) SetDefault(c *gin.Context) {
	if err := h.mappings.SetDefault(c.Request.Context(), c.Param("id"), c.GetString("user_id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Delete DELETE /api/v1/mappings/:id
func (h *MappingHandler) Delete(c *gin.Context) {
	if err := h.mappings.Delete(c.Request.Context(), c.Param("id"), c.GetString("user_id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// DetectHeaders POST /api/v1/mappings/detect-headers
// Multipart upload; returns the header row plus a short preview.
func (h *MappingHandler) DetectHeaders(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		InternalError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		InternalError(c, err)
		return
	}

	headers, preview, err := service.DetectHeaders(fileHeader.Filename, data)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"headers": headers, "preview": preview})
}
