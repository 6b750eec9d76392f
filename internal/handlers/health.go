package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Clients  int    `json:"live_clients"`
}

// HealthCheck reports process and database health
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *Handler) HealthCheck(c *gin.Context) {
	response := HealthResponse{Status: "ok", Database: "not configured"}
	if h.hub != nil {
		response.Clients = h.hub.ClientCount()
	}

	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	}

	c.JSON(http.StatusOK, response)
}
