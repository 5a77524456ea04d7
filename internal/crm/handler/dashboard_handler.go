package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/crm/service"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	dash, err := h.dashboard.Get(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, dash)
}
