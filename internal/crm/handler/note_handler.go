package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/crm/service"
)

type NoteHandler struct {
	notes *service.NoteService
}

func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// List GET /api/v1/customers/:id/notes
func (h *NoteHandler) List(c *gin.Context) {
	notes, err := h.notes.List(c.Request.Context(), GetActor(c), c.Param("id"), c.Query("category"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, notes)
}

// Create POST /api/v1/customers/:id/notes
func (h *NoteHandler) Create(c *gin.Context) {
	var req service.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	note, err := h.notes.Create(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, note)
}

// Update PUT /api/v1/notes/:id
func (h *NoteHandler) Update(c *gin.Context) {
	var req service.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	note, err := h.notes.Update(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, note)
}

// Delete DELETE /api/v1/notes/:id
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), GetActor(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
