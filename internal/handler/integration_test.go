package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/analytics"
	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/SergeiKhy/affiliate-storefront/internal/handler"
	"github.com/SergeiKhy/affiliate-storefront/internal/middleware"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const integrationStream = "test:storefront:events"

// integrationEnv окружение с PostgreSQL и Redis в контейнерах
type integrationEnv struct {
	router     *gin.Engine
	clickProc  service.ClickProcessor
	dispatcher *analytics.Dispatcher
	redis      *redis.Client
}

func setupIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()
	ctx := t.Context()
	logger := zap.NewNop()

	dbContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbContainer.Terminate(context.Background()) })

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisContainer.Terminate(context.Background()) })

	dsn, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(ctx, dsn, logger))

	db, err := repository.NewPostgresDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(ctx, `INSERT INTO profiles (user_id, role) VALUES ('admin-1', 'admin')`)
	require.NoError(t, err)

	redisURI, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(redisURI)
	require.NoError(t, err)
	redisClient := redis.NewClient(opts)

	// Клиент закрывает dispatcher через приёмник
	dispatcher := analytics.NewDispatcher(analytics.NewRedisSink(redisClient, integrationStream), logger)

	repos := repository.NewRepositories(db)
	clickProc := service.NewClickProcessor(repos.Clicks, logger)
	clickProc.Start()

	authorizer := auth.NewAuthorizer(auth.Config{JWTSecret: testSecret, StoreConfigured: true}, repos.Profiles, logger)
	catalog := service.NewCatalogService(repos, clickProc, logger)
	admin := service.NewAdminService(repos, authorizer, service.NewValidator([]string{"amazon.co.jp", "amzn.to"}), logger)
	pages := service.NewPageService(catalog, admin, repos.Clicks, authorizer, dispatcher, logger)
	tracker := service.NewClickTracker(catalog, dispatcher, analytics.NewUserAgentParser(), logger)

	// Высокий лимит для тестов
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
		CleanupInterval:   time.Minute,
	})
	t.Cleanup(rateLimiter.Stop)

	router := handler.NewRouter(handler.Services{
		Catalog: catalog,
		Pages:   pages,
		Admin:   admin,
		Tracker: tracker,
		Uploads: service.NewUploadService(nil, authorizer, logger),
		Clicks:  clickProc,
	}, handler.RouterConfig{RateLimiter: rateLimiter}, logger)

	env := &integrationEnv{
		router:     router,
		clickProc:  clickProc,
		dispatcher: dispatcher,
		redis:      redisClient,
	}
	t.Cleanup(func() {
		env.clickProc.Stop()
		_ = env.dispatcher.Close()
	})
	return env
}

func (env *integrationEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, env.router, method, path, body, token)
}

// TestIntegration_StorefrontFlow админ наполняет каталог, посетитель доходит до партнёрской ссылки
func TestIntegration_StorefrontFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	env := setupIntegrationEnv(t)
	ctx := t.Context()
	token := tokenFor(t, "admin-1")

	w := env.do(t, http.MethodPost, "/api/v1/admin/categories", gin.H{"name": "スキンケア", "sort_order": 1}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	category := decode[models.MutationResult[models.Category]](t, w).Data

	w = env.do(t, http.MethodPost, "/api/v1/admin/states", gin.H{
		"name":        "赤みをなくしたい",
		"category_id": category.ID,
		"sort_order":  1,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	state := decode[models.MutationResult[models.State]](t, w).Data

	w = env.do(t, http.MethodPost, "/api/v1/admin/products", gin.H{
		"name":          "CICA鎮静ローション",
		"brand":         "VT Cosmetics",
		"affiliate_url": "https://amzn.to/3abcdef",
		"state_id":      state.ID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[models.MutationResult[models.Product]](t, w).Data

	t.Run("несуществующее состояние", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/admin/products", gin.H{
			"name":          "孤児",
			"affiliate_url": "https://www.amazon.co.jp/dp/B01",
			"state_id":      state.ID + 100,
		}, token)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, service.MsgInUse, decode[models.MutationResult[models.Product]](t, w).Error)
	})

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/suggestions/%d?mode=category&category_id=%d&position=1", state.ID, category.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[service.SuggestionPage](t, w)
	require.Len(t, page.Products, 1)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/go/%d?session_id=%s", product.ID, page.SessionID), nil, "")
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://amzn.to/3abcdef", w.Header().Get("Location"))

	// Stop дожидается записи кликов из буфера
	env.clickProc.Stop()
	env.dispatcher.Wait()

	w = env.do(t, http.MethodGet, "/api/v1/admin/analytics?days=1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[models.AnalyticsReport](t, w)
	assert.Equal(t, int64(1), report.TotalClicks)
	require.Len(t, report.StateClicks, 1)
	assert.Equal(t, state.Name, report.StateClicks[0].Name)

	entries, err := env.redis.XRange(ctx, integrationStream, "-", "+").Result()
	require.NoError(t, err)

	var names []any
	for _, e := range entries {
		names = append(names, e.Values["name"])
		if e.Values["name"] == analytics.EventClickAffiliate {
			assert.Equal(t, page.SessionID, e.Values["session_id"])
		}
	}
	assert.Contains(t, names, analytics.EventSelectEffect)
	assert.Contains(t, names, analytics.EventViewSuggestion)
	assert.Contains(t, names, analytics.EventClickAffiliate)
}
