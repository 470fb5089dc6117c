package handler

import (
	"net/http"
	"strconv"

	"github.com/SergeiKhy/affiliate-storefront/internal/datatable"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler админка: таблицы, CRUD, дашборд и аналитика
type AdminHandler struct {
	admin  service.AdminService
	pages  service.PageService
	logger *zap.Logger
}

func NewAdminHandler(admin service.AdminService, pages service.PageService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{admin: admin, pages: pages, logger: logger}
}

// mutationStatus HTTP-статус для результата админской операции
func mutationStatus(stage models.MutationStage, message string, created bool) int {
	switch stage {
	case models.StageSucceeded:
		if created {
			return http.StatusCreated
		}
		return http.StatusOK
	case models.StageAuthorizing:
		return http.StatusUnauthorized
	case models.StageValidating:
		return http.StatusBadRequest
	}

	switch message {
	case service.MsgNotFound:
		return http.StatusNotFound
	case service.MsgInUse, service.MsgConflict:
		return http.StatusConflict
	case service.MsgInvalidInput:
		return http.StatusBadRequest
	case service.MsgStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeMutation[T any](c *gin.Context, res models.MutationResult[T], created bool) {
	c.JSON(mutationStatus(res.Stage, res.Error, created), res)
}

// bindInput некорректный JSON отвечает в той же форме, что и ошибка валидации
func bindInput[T any](c *gin.Context, logger *zap.Logger) (T, bool) {
	var input T
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		writeMutation(c, models.Failed[T](models.StageValidating, service.MsgInvalidInput), false)
		return input, false
	}
	return input, true
}

func tableQuery(c *gin.Context) service.TableQuery {
	return service.TableQuery{
		Query: c.Query("q"),
		Sort:  c.Query("sort"),
		Dir:   datatable.ParseDirection(c.Query("dir")),
	}
}

// Dashboard godoc
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security AdminToken
// @Success 200 {object} service.DashboardPage
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	page, err := h.pages.AdminDashboard(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Analytics godoc
// @Summary Click analytics report
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param days query int false "Period in days (1-90, default 7)"
// @Success 200 {object} models.AnalyticsReport
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/admin/analytics [get]
func (h *AdminHandler) Analytics(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			parsed = -1
		}
		days = parsed
	}

	report, err := h.pages.Analytics(c.Request.Context(), days)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListCategories godoc
// @Summary Category table
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param q query string false "Search"
// @Param sort query string false "Sort column"
// @Param dir query string false "asc | desc"
// @Success 200 {object} datatable.View[models.Category]
// @Router /api/v1/admin/categories [get]
func (h *AdminHandler) ListCategories(c *gin.Context) {
	view, err := h.pages.AdminCategories(c.Request.Context(), tableQuery(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListStates godoc
// @Summary State table
// @Tags admin
// @Produce json
// @Security AdminToken
// @Success 200 {object} datatable.View[models.State]
// @Router /api/v1/admin/states [get]
func (h *AdminHandler) ListStates(c *gin.Context) {
	view, err := h.pages.AdminStates(c.Request.Context(), tableQuery(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListProducts godoc
// @Summary Product table with state names
// @Tags admin
// @Produce json
// @Security AdminToken
// @Success 200 {object} datatable.View[models.ProductWithState]
// @Router /api/v1/admin/products [get]
func (h *AdminHandler) ListProducts(c *gin.Context) {
	view, err := h.pages.AdminProducts(c.Request.Context(), tableQuery(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateCategory godoc
// @Summary Create category
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param request body models.CategoryInput true "Category"
// @Success 201 {object} models.MutationResult[models.Category]
// @Failure 400 {object} models.MutationResult[models.Category]
// @Failure 401 {object} models.MutationResult[models.Category]
// @Router /api/v1/admin/categories [post]
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	input, ok := bindInput[models.CategoryInput](c, h.logger)
	if !ok {
		return
	}
	writeMutation(c, h.admin.CreateCategory(c.Request.Context(), input), true)
}

// UpdateCategory godoc
// @Summary Update category
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param id path int true "Category ID"
// @Param request body models.CategoryInput true "Category"
// @Success 200 {object} models.MutationResult[models.Category]
// @Router /api/v1/admin/categories/{id} [put]
func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	input, ok := bindInput[models.CategoryInput](c, h.logger)
	if !ok {
		return
	}
	writeMutation(c, h.admin.UpdateCategory(c.Request.Context(), id, input), false)
}

// DeleteCategory godoc
// @Summary Delete category
// @Description States of the category are kept without a category
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param id path int true "Category ID"
// @Success 200 {object} models.MutationResult[models.Category]
// @Failure 404 {object} models.MutationResult[models.Category]
// @Router /api/v1/admin/categories/{id} [delete]
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	writeMutation(c, h.admin.DeleteCategory(c.Request.Context(), id), false)
}

// CreateState godoc
// @Summary Create state
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param request body models.StateInput true "State"
// @Success 201 {object} models.MutationResult[models.State]
// @Router /api/v1/admin/states [post]
func (h *AdminHandler) CreateState(c *gin.Context) {
	input, ok := bindInput[models.StateInput](c, h.logger)
	if !ok {
		return
	}
	writeMutation(c, h.admin.CreateState(c.Request.Context(), input), true)
}

// UpdateState godoc
// @Summary Update state
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param id path int true "State ID"
// @Param request body models.StateInput true "State"
// @Success 200 {object} models.MutationResult[models.State]
// @Router /api/v1/admin/states/{id} [put]
func (h *AdminHandler) UpdateState(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	input, ok := bindInput[models.StateInput](c, h.logger)
	if !ok {
		return
	}
	writeMutation(c, h.admin.UpdateState(c.Request.Context(), id, input), false)
}

// DeleteState godoc
// @Summary Delete state
// @Description Rejected while products reference the state
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param id path int true "State ID"
// @Success 200 {object} models.MutationResult[models.State]
// @Failure 409 {object} models.MutationResult[models.State]
// @Router /api/v1/admin/states/{id} [delete]
func (h *AdminHandler) DeleteState(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	writeMutation(c, h.admin.DeleteState(c.Request.Context(), id), false)
}

// CreateProduct godoc
// @Summary Create product
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param request body models.ProductInput true "Product"
// @Success 201 {object} models.MutationResult[models.Product]
// @Router /api/v1/admin/products [post]
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	input, ok := bindInput[models.ProductInput](c, h.logger)
	if !ok {
		return
	}
	writeMutation(c, h.admin.CreateProduct(c.Request.Context(), input), true)
}

// UpdateProduct godoc
// @Summary Update product
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param id path int true "Product ID"
// @Param request body models.ProductInput true "Product"
// @Success 200 {object} models.MutationResult[models.Product]
// @Router /api/v1/admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	input, ok := bindInput[models.ProductInput](c, h.logger)
	if !ok {
		return
	}
	writeMutation(c, h.admin.UpdateProduct(c.Request.Context(), id, input), false)
}

// DeleteProduct godoc
// @Summary Delete product
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param id path int true "Product ID"
// @Success 200 {object} models.MutationResult[models.Product]
// @Router /api/v1/admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	writeMutation(c, h.admin.DeleteProduct(c.Request.Context(), id), false)
}
