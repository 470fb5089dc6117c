package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/SergeiKhy/affiliate-storefront/internal/datatable"
	"github.com/SergeiKhy/affiliate-storefront/internal/middleware"
	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

const msgInvalidID = "IDが正しくありません"

// parseID разбирает положительный идентификатор из параметра пути
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: msgInvalidID,
		})
		return 0, false
	}
	return id, true
}

// optionalInt64 пустой или некорректный параметр запроса даёт 0
func optionalInt64(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// writeError переводит ошибки сервисов в ответ.
// Для отменённого клиентом запроса ответ не пишется.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		logger.Debug("Запрос отменён клиентом", zap.String("path", c.Request.URL.Path))
		c.Abort()
	case errors.Is(err, auth.ErrNotAuthorized), errors.Is(err, auth.ErrInvalidToken):
		logger.Info("Доступ запрещён",
			zap.String("path", c.Request.URL.Path),
			zap.Bool("token_present", middleware.HasAdminToken(c)),
		)
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:    "not_authorized",
			Message:  service.MsgNotAuthorized,
			Redirect: auth.LoginPath,
		})
	case errors.Is(err, service.ErrStateNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "state_not_found", Message: service.MsgStateNotFound})
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "category_not_found", Message: service.MsgNotFound})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "product_not_found", Message: service.MsgNotFound})
	case errors.Is(err, service.ErrInvalidDays):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_days", Message: "期間は1〜90日で指定してください"})
	case errors.Is(err, datatable.ErrNotSortable):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "not_sortable", Message: "この列では並べ替えできません"})
	case errors.Is(err, service.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "unavailable", Message: service.MsgUnavailable})
	default:
		logger.Error("Необработанная ошибка", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: service.MsgGenericError})
	}
}
