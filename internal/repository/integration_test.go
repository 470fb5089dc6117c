package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupTestDB поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDB(t *testing.T) *repository.PostgresDB {
	t.Helper()
	ctx := t.Context()

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
	t.Cleanup(func() {
		_ = dbContainer.Terminate(context.Background())
	})

	dsn, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, repository.Migrate(ctx, dsn, zap.NewNop()))

	db, err := repository.NewPostgresDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return db
}

// TestIntegration_Repositories проверяет CRUD и агрегацию кликов на реальной БД
func TestIntegration_Repositories(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	db := setupTestDB(t)
	repos := repository.NewRepositories(db)
	ctx := t.Context()

	category, err := repos.Categories.Create(ctx, &models.CategoryInput{Name: "スキンケア", SortOrder: 2})
	require.NoError(t, err)
	first, err := repos.Categories.Create(ctx, &models.CategoryInput{Name: "メイク", SortOrder: 1})
	require.NoError(t, err)

	categories, err := repos.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, first.ID, categories[0].ID)

	t.Run("state round-trip", func(t *testing.T) {
		created, err := repos.States.Create(ctx, &models.StateInput{
			Name:       "清潔感を出したい",
			ImageURL:   "https://cdn.example.com/clean.jpg",
			CategoryID: &category.ID,
		})
		require.NoError(t, err)

		got, err := repos.States.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, got.Name)
		require.NotNil(t, got.CategoryID)
		assert.Equal(t, category.ID, *got.CategoryID)

		byCategory, err := repos.States.ListByCategoryID(ctx, category.ID)
		require.NoError(t, err)
		assert.Len(t, byCategory, 1)
	})

	states, err := repos.States.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, states)
	stateID := states[0].ID

	t.Run("products", func(t *testing.T) {
		active, err := repos.Products.Create(ctx, &models.ProductInput{
			Name:         "化粧水",
			AffiliateURL: "https://www.amazon.co.jp/dp/B000?tag=x",
			StateID:      stateID,
			Status:       models.ProductStatusActive,
		})
		require.NoError(t, err)

		_, err = repos.Products.Create(ctx, &models.ProductInput{
			Name:         "非公開",
			AffiliateURL: "https://www.amazon.co.jp/dp/B001?tag=x",
			StateID:      stateID,
			Status:       models.ProductStatusHidden,
		})
		require.NoError(t, err)

		visible, err := repos.Products.ListActiveByStateID(ctx, stateID)
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, active.ID, visible[0].ID)

		all, err := repos.Products.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, states[0].Name, all[0].StateName)

		_, err = repos.Products.Create(ctx, &models.ProductInput{
			Name:         "孤児",
			AffiliateURL: "https://www.amazon.co.jp/dp/B002",
			StateID:      9999,
			Status:       models.ProductStatusActive,
		})
		assert.ErrorIs(t, err, repository.ErrInvalidReference)
	})

	t.Run("click aggregation", func(t *testing.T) {
		products, err := repos.Products.ListActiveByStateID(ctx, stateID)
		require.NoError(t, err)
		require.NotEmpty(t, products)

		for i := 0; i < 3; i++ {
			require.NoError(t, repos.Clicks.RecordClick(ctx, &models.ClickLog{
				ID:        uuid.NewString(),
				Timestamp: time.Now(),
				StateID:   stateID,
				ProductID: products[0].ID,
				SessionID: "session1",
			}))
		}

		since := time.Now().Add(-time.Hour)
		byState, err := repos.Clicks.AggregateClicks(ctx, models.ClickDimensionState, since)
		require.NoError(t, err)
		require.Len(t, byState, 1)
		assert.Equal(t, int64(3), byState[0].Count)
		assert.Equal(t, states[0].Name, byState[0].Name)

		byProduct, err := repos.Clicks.AggregateClicks(ctx, models.ClickDimensionProduct, since)
		require.NoError(t, err)
		require.Len(t, byProduct, 1)
		assert.Equal(t, products[0].ID, byProduct[0].ID)

		total, err := repos.Clicks.CountSince(ctx, since)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		daily, err := repos.Clicks.GetDailyStats(ctx, since)
		require.NoError(t, err)
		require.NotEmpty(t, daily)

		future, err := repos.Clicks.AggregateClicks(ctx, models.ClickDimensionState, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, future)
	})

	t.Run("delete", func(t *testing.T) {
		// состояние с товарами удалить нельзя
		err := repos.States.Delete(ctx, stateID)
		assert.ErrorIs(t, err, repository.ErrInvalidReference)

		assert.ErrorIs(t, repos.Categories.Delete(ctx, 9999), repository.ErrNotFound)
	})

	t.Run("profiles", func(t *testing.T) {
		_, err := db.Pool.Exec(ctx, `INSERT INTO profiles (user_id, role) VALUES ('admin-1', 'admin')`)
		require.NoError(t, err)

		profile, err := repos.Profiles.GetByUserID(ctx, "admin-1")
		require.NoError(t, err)
		assert.True(t, profile.IsAdmin())

		_, err = repos.Profiles.GetByUserID(ctx, "nobody")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
