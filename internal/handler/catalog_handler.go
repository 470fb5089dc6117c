package handler

import (
	"net/http"
	"strconv"

	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler публичные страницы витрины
type CatalogHandler struct {
	catalog service.CatalogService
	pages   service.PageService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, pages service.PageService, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{catalog: catalog, pages: pages, logger: logger}
}

// Home godoc
// @Summary Home page data
// @Description States in display order and the hero carousel selection
// @Tags storefront
// @Produce json
// @Success 200 {object} service.HomePage
// @Router /api/v1/home [get]
func (h *CatalogHandler) Home(c *gin.Context) {
	page, err := h.pages.Home(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// States godoc
// @Summary List states
// @Tags storefront
// @Produce json
// @Success 200 {array} models.State
// @Router /api/v1/states [get]
func (h *CatalogHandler) States(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.GetStates(c.Request.Context()))
}

// Categories godoc
// @Summary Categories page data
// @Tags storefront
// @Produce json
// @Param category_id query int false "Preselected category"
// @Success 200 {object} service.CategoriesPage
// @Router /api/v1/categories [get]
func (h *CatalogHandler) Categories(c *gin.Context) {
	var categoryID *int64
	if raw := c.Query("category_id"); raw != "" {
		// Некорректный id ведёт себя как несуществующая категория
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			id = -1
		}
		categoryID = &id
	}

	page, err := h.pages.Categories(c.Request.Context(), categoryID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CategoryStates godoc
// @Summary Select a category tab
// @Tags storefront
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} service.CategoryStatesPage
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/categories/{id}/states [get]
func (h *CatalogHandler) CategoryStates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	page, err := h.pages.CategoryStates(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Suggestion godoc
// @Summary Suggestion page data
// @Description State, its active products and a fresh session_id for click tracking
// @Tags storefront
// @Produce json
// @Param state_id path int true "State ID"
// @Param mode query string false "effects (home carousel) | category"
// @Param category_id query int false "Category the state was picked from"
// @Param position query int false "1-based position in the list"
// @Success 200 {object} service.SuggestionPage
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/suggestions/{state_id} [get]
func (h *CatalogHandler) Suggestion(c *gin.Context) {
	id, ok := parseID(c, "state_id")
	if !ok {
		return
	}

	source := service.SuggestionSource{
		From:       c.Query("mode"),
		CategoryID: optionalInt64(c, "category_id"),
		Position:   int(optionalInt64(c, "position")),
	}

	page, err := h.pages.Suggestion(c.Request.Context(), id, source)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
