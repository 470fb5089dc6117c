package handler

import (
	"net/http"

	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ClickHandler struct {
	tracker service.ClickTracker
	logger  *zap.Logger
}

func NewClickHandler(tracker service.ClickTracker, logger *zap.Logger) *ClickHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickHandler{tracker: tracker, logger: logger}
}

type TrackClickRequest struct {
	ProductID int64  `json:"product_id" binding:"required,min=1"`
	StateID   int64  `json:"state_id" binding:"min=0"`
	SessionID string `json:"session_id" binding:"max=64"`
}

// TrackClick godoc
// @Summary Track an affiliate click
// @Description Records the click and returns the affiliate URL to open
// @Tags clicks
// @Accept json
// @Produce json
// @Param request body TrackClickRequest true "Click"
// @Success 200 {object} service.ClickResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/clicks [post]
func (h *ClickHandler) TrackClick(c *gin.Context) {
	var req TrackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	res, err := h.tracker.TrackClick(c.Request.Context(), service.ClickRequest{
		ProductID: req.ProductID,
		StateID:   req.StateID,
		SessionID: req.SessionID,
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Redirect godoc
// @Summary Outbound affiliate redirect
// @Description Tracks the click and redirects to the affiliate URL
// @Tags clicks
// @Param product_id path int true "Product ID"
// @Param state_id query int false "State the product was shown for"
// @Param session_id query string false "Page session"
// @Success 307
// @Failure 404 {object} ErrorResponse
// @Router /go/{product_id} [get]
func (h *ClickHandler) Redirect(c *gin.Context) {
	id, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	res, err := h.tracker.TrackClick(c.Request.Context(), service.ClickRequest{
		ProductID: id,
		StateID:   optionalInt64(c, "state_id"),
		SessionID: c.Query("session_id"),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, res.URL)
}
