package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/crm/service"
)

type ImportHandler struct {
	imports *service.ImportService
}

func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// Run POST /api/v1/imports
// Multipart upload with an optional mapping_id form value.
func (h *ImportHandler) Run(c *gin.Context) {
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

	var mappingID *string
	if v := c.PostForm("mapping_id"); v != "" {
		mappingID = &v
	}

	result, err := h.imports.Run(c.Request.Context(), c.GetString("user_id"), fileHeader.Filename, data, mappingID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, result)
}

// List GET /api/v1/imports
func (h *ImportHandler) List(c *gin.Context) {
	page, pageSize, offset := GetPagination(c)

	records, total, err := h.imports.List(c.Request.Context(), c.Query("imported_by"), offset, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Paged(c, records, total, page, pageSize)
}

// Get GET /api/v1/imports/:id
func (h *ImportHandler) Get(c *gin.Context) {
	record, err := h.imports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, record)
}

// FileURL GET /api/v1/imports/:id/file
func (h *ImportHandler) FileURL(c *gin.Context) {
	url, err := h.imports.FileURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"url": url})
}
