package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liliang-cn/qualia/internal/service"
)

// Handler handles admin API requests
type Handler struct {
	adminService *service.AdminService
}

// NewHandler creates a new admin handler
func NewHandler(adminService *service.AdminService) *Handler {
	return &Handler{adminService: adminService}
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", h.GetStats)
	r.GET("/history", h.GetHistory)
}

// GetStats returns conversation and persistence counters
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.adminService.GetStats(c.Request.Context()))
}

// GetHistory returns the persisted history, which may differ from the
// in-memory conversation after a failed save.
func (h *Handler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.adminService.PersistedHistory(c.Request.Context())})
}
