package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/crm/repository"
	"github.com/alims/leadcrm/internal/crm/service"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List GET /api/v1/tasks
func (h *TaskHandler) List(c *gin.Context) {
	page, pageSize, offset := GetPagination(c)
	overdue, _ := strconv.ParseBool(c.DefaultQuery("overdue", "false"))
	filter := repository.TaskFilter{
		CustomerID: c.Query("customer_id"),
		AssignedTo: c.Query("assigned_to"),
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Overdue:    overdue,
	}

	tasks, total, err := h.tasks.List(c.Request.Context(), GetActor(c), filter, offset, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Paged(c, tasks, total, page, pageSize)
}

// Counts GET /api/v1/tasks/counts
func (h *TaskHandler) Counts(c *gin.Context) {
	counts, err := h.tasks.Counts(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, counts)
}

// Create POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, task)
}

// Get GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// Update PUT /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// Complete POST /api/v1/tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	if err := h.tasks.Complete(c.Request.Context(), GetActor(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Delete DELETE /api/v1/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), GetActor(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// ListComments GET /api/v1/tasks/:id/comments
func (h *TaskHandler) ListComments(c *gin.Context) {
	comments, err := h.tasks.ListComments(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, comments)
}

// AddComment POST /api/v1/tasks/:id/comments
func (h *TaskHandler) AddComment(c *gin.Context) {
	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	comment, err := h.tasks.AddComment(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, comment)
}
