package middleware

import (
	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	DefaultAdminTokenHeader = "X-Admin-Token"
	DefaultAdminTokenCookie = "admin_token"

	adminTokenPresentKey = "admin_token_present"
)

// AdminTokenConfig откуда брать токен администратора
type AdminTokenConfig struct {
	HeaderName string
	CookieName string
}

// AdminToken кладёт токен администратора в контекст запроса.
// Запрос не отклоняется: права проверяет сервис при каждой операции.
// Порядок поиска: Authorization: Bearer, заголовок, cookie.
func AdminToken(config AdminTokenConfig) gin.HandlerFunc {
	if config.HeaderName == "" {
		config.HeaderName = DefaultAdminTokenHeader
	}
	if config.CookieName == "" {
		config.CookieName = DefaultAdminTokenCookie
	}

	return func(c *gin.Context) {
		token := auth.ExtractTokenFromBearer(c.GetHeader("Authorization"))
		if token == "" {
			token = c.GetHeader(config.HeaderName)
		}
		if token == "" {
			if cookie, err := c.Cookie(config.CookieName); err == nil {
				token = cookie
			}
		}

		if token != "" {
			c.Request = c.Request.WithContext(auth.WithToken(c.Request.Context(), token))
		}
		c.Set(adminTokenPresentKey, token != "")

		c.Next()
	}
}

// HasAdminToken был ли передан токен, без проверки его валидности
func HasAdminToken(c *gin.Context) bool {
	present, exists := c.Get(adminTokenPresentKey)
	if !exists {
		return false
	}
	return present.(bool)
}
