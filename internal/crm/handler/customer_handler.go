package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/crm/repository"
	"github.com/alims/leadcrm/internal/crm/service"
)

type CustomerHandler struct {
	customers *service.CustomerService
}

func NewCustomerHandler(customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// List GET /api/v1/customers
func (h *CustomerHandler) List(c *gin.Context) {
	page, pageSize, offset := GetPagination(c)
	filter := repository.CustomerFilter{
		Status:     c.Query("status"),
		AssignedTo: c.Query("assigned_to"),
		Area:       c.Query("area"),
		Search:     c.Query("search"),
	}

	customers, total, err := h.customers.List(c.Request.Context(), GetActor(c), filter, offset, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Paged(c, customers, total, page, pageSize)
}

// ListUnassigned GET /api/v1/customers/unassigned
func (h *CustomerHandler) ListUnassigned(c *gin.Context) {
	page, pageSize, offset := GetPagination(c)
	customers, total, err := h.customers.ListUnassigned(c.Request.Context(), GetActor(c), offset, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Paged(c, customers, total, page, pageSize)
}

// Create POST /api/v1/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, customer)
}

// Get GET /api/v1/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customers.Get(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, customer)
}

// Update PUT /api/v1/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, customer)
}

// Delete DELETE /api/v1/customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.customers.Delete(c.Request.Context(), GetActor(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// ChangeStatus POST /api/v1/customers/:id/status
func (h *CustomerHandler) ChangeStatus(c *gin.Context) {
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	history, err := h.customers.ChangeStatus(c.Request.Context(), GetActor(c), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, history)
}

// History GET /api/v1/customers/:id/history
func (h *CustomerHandler) History(c *gin.Context) {
	entries, err := h.customers.History(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, entries)
}

type assignRequest struct {
	CounsellorID *string `json:"counsellor_id"`
}

// Assign POST /api/v1/customers/:id/assign
func (h *CustomerHandler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.customers.Assign(c.Request.Context(), GetActor(c), c.Param("id"), req.CounsellorID); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

type bulkAssignRequest struct {
	CustomerIDs  []string `json:"customer_ids" binding:"required,min=1"`
	CounsellorID string   `json:"counsellor_id" binding:"required"`
}

// BulkAssign POST /api/v1/customers/bulk-assign
func (h *CustomerHandler) BulkAssign(c *gin.Context) {
	var req bulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	assigned, err := h.customers.BulkAssign(c.Request.Context(), GetActor(c), req.CustomerIDs, req.CounsellorID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"assigned": assigned})
}

type randomAssignRequest struct {
	CounsellorID string `json:"counsellor_id" binding:"required"`
	Count        int    `json:"count" binding:"required,min=1"`
}

// RandomAssign POST /api/v1/customers/random-assign
func (h *CustomerHandler) RandomAssign(c *gin.Context) {
	var req randomAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	assigned, err := h.customers.RandomAssign(c.Request.Context(), GetActor(c), req.CounsellorID, req.Count)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"assigned": assigned})
}

// Export GET /api/v1/customers/export
func (h *CustomerHandler) Export(c *gin.Context) {
	filter := repository.CustomerFilter{
		Status:     c.Query("status"),
		AssignedTo: c.Query("assigned_to"),
		Area:       c.Query("area"),
	}

	data, err := h.customers.ExportXLSX(c.Request.Context(), GetActor(c), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	fileName := fmt.Sprintf("customers-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
