package handler

import (
	"net/http"

	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status string `json:"status"`
	// Mode "database" или "demo"
	Mode       string                `json:"mode"`
	ClickQueue *service.ChannelStats `json:"click_queue,omitempty"`
}

// HealthCheck godoc
// @Summary Health check
// @Description Storage mode and click queue usage
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/v1/health [get]
func HealthCheck(demo bool, clicks service.ClickProcessor) gin.HandlerFunc {
	mode := "database"
	if demo {
		mode = "demo"
	}
	return func(c *gin.Context) {
		resp := HealthResponse{Status: "ok", Mode: mode}
		if clicks != nil {
			stats := clicks.GetChannelStats()
			resp.ClickQueue = &stats
		}
		c.JSON(http.StatusOK, resp)
	}
}
