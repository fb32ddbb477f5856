package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/onlinexam-backend/internal/response"
	"github.com/stemsi/onlinexam-backend/internal/service"
)

// DashboardHandler handles admin dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/admin/dashboard?recent=10
// Returns catalog record counts and the latest submitted attempts.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	recent, _ := strconv.Atoi(c.DefaultQuery("recent", "10"))

	data, err := h.dashboardService.GetDashboardData(c.Request.Context(), recent)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}
