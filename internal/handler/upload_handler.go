package handler

import (
	"errors"
	"net/http"

	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploads service.UploadService
	logger  *zap.Logger
}

func NewUploadHandler(uploads service.UploadService, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{uploads: uploads, logger: logger}
}

// Upload godoc
// @Summary Upload an image
// @Description JPEG, PNG, WebP or GIF up to 5MB, returns a public URL
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security AdminToken
// @Param file formData file true "Image"
// @Success 201 {object} service.UploadResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	// Запас сверх лимита файла на заголовки multipart
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxUploadSize+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeUploadError(c, service.ErrFileTooLarge)
			return
		}
		h.writeUploadError(c, service.ErrEmptyFile)
		return
	}
	if header.Size > service.MaxUploadSize {
		h.writeUploadError(c, service.ErrFileTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.writeUploadError(c, err)
		return
	}
	defer file.Close()

	res, err := h.uploads.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.writeUploadError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *UploadHandler) writeUploadError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	resp := ErrorResponse{Error: "upload_failed", Message: service.UploadErrorMessage(err)}

	switch {
	case errors.Is(err, auth.ErrNotAuthorized), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
		resp.Error = "not_authorized"
		resp.Redirect = auth.LoginPath
	case errors.Is(err, service.ErrUploadNotConfigured):
		status = http.StatusInternalServerError
		resp.Error = "upload_not_configured"
	case errors.Is(err, service.ErrFileTooLarge):
		resp.Error = "file_too_large"
	case errors.Is(err, service.ErrUnsupportedType):
		resp.Error = "unsupported_type"
	case errors.Is(err, service.ErrEmptyFile):
		resp.Error = "no_file"
	default:
		status = http.StatusInternalServerError
		h.logger.Error("Upload error", zap.Error(err))
	}

	c.JSON(status, resp)
}
