package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/analytics"
	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"github.com/SergeiKhy/affiliate-storefront/internal/service/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// recordingSink запоминает отправленные события аналитики
type recordingSink struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (s *recordingSink) Send(ctx context.Context, events ...analytics.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) Events() []analytics.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]analytics.Event(nil), s.events...)
}

func (s *recordingSink) Names() []string {
	var names []string
	for _, e := range s.Events() {
		names = append(names, e.Name)
	}
	return names
}

type testEnv struct {
	set        *mocks.Set
	sink       *recordingSink
	dispatcher *analytics.Dispatcher
	catalog    service.CatalogService
	admin      service.AdminService
	pages      service.PageService
	tracker    service.ClickTracker
}

// setupTestEnv создаёт сервисы поверх in-memory репозиториев
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	set := mocks.NewSet()
	set.Profiles.Add("admin-1", models.RoleAdmin)
	set.Profiles.Add("user-1", models.RoleUser)
	repos := set.Repositories()

	sink := &recordingSink{}
	dispatcher := analytics.NewDispatcher(sink, logger)
	authorizer := auth.NewAuthorizer(auth.Config{JWTSecret: testSecret, StoreConfigured: true}, repos.Profiles, logger)

	catalog := service.NewCatalogService(repos, nil, logger)
	admin := service.NewAdminService(repos, authorizer, service.NewValidator([]string{"amazon.co.jp"}), logger)
	pages := service.NewPageService(catalog, admin, repos.Clicks, authorizer, dispatcher, logger,
		service.WithPageClock(clockwork.NewFakeClockAt(testNow)),
	)
	tracker := service.NewClickTracker(catalog, dispatcher, analytics.NewUserAgentParser(), logger)

	return &testEnv{
		set:        set,
		sink:       sink,
		dispatcher: dispatcher,
		catalog:    catalog,
		admin:      admin,
		pages:      pages,
		tracker:    tracker,
	}
}

func contextAs(t *testing.T, userID string) context.Context {
	t.Helper()
	token, err := auth.IssueToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return auth.WithToken(context.Background(), token)
}

func adminCtx(t *testing.T) context.Context {
	return contextAs(t, "admin-1")
}

type seeded struct {
	category models.Category
	clean    models.State
	redness  models.State
	toner    models.Product
	hidden   models.Product
	cica     models.Product
}

// seed заполняет каталог: одна категория, два состояния, три товара (один скрыт)
func seed(t *testing.T, set *mocks.Set) seeded {
	t.Helper()
	ctx := context.Background()

	category, err := set.Categories.Create(ctx, &models.CategoryInput{Name: "スキンケア", SortOrder: 1})
	require.NoError(t, err)

	clean, err := set.States.Create(ctx, &models.StateInput{
		Name:       "清潔感を出したい",
		ImageURL:   "https://cdn.example.com/clean.jpg",
		CategoryID: &category.ID,
		SortOrder:  1,
	})
	require.NoError(t, err)

	redness, err := set.States.Create(ctx, &models.StateInput{Name: "赤みをなくしたい", SortOrder: 2})
	require.NoError(t, err)

	toner, err := set.Products.Create(ctx, &models.ProductInput{
		Name:         "化粧水",
		Brand:        "SK-II",
		AffiliateURL: "https://www.amazon.co.jp/dp/B09XXXXXXX?tag=test-22",
		StateID:      clean.ID,
		Status:       models.ProductStatusActive,
	})
	require.NoError(t, err)

	hidden, err := set.Products.Create(ctx, &models.ProductInput{
		Name:         "旧パッケージ",
		Brand:        "資生堂",
		AffiliateURL: "https://www.amazon.co.jp/dp/B00XXXXXXX",
		StateID:      clean.ID,
		Status:       models.ProductStatusHidden,
	})
	require.NoError(t, err)

	cica, err := set.Products.Create(ctx, &models.ProductInput{
		Name:         "CICA鎮静ローション",
		Brand:        "VT Cosmetics",
		AffiliateURL: "https://www.amazon.co.jp/dp/B10XXXXXXX",
		StateID:      redness.ID,
		Status:       models.ProductStatusActive,
	})
	require.NoError(t, err)

	return seeded{category: *category, clean: *clean, redness: *redness, toner: *toner, hidden: *hidden, cica: *cica}
}
