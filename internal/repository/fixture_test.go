package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFixture_States проверяет демо-набор состояний и его порядок
func TestFixture_States(t *testing.T) {
	repos := NewFixtureRepositories(nil)
	ctx := context.Background()

	states, err := repos.States.List(ctx)
	require.NoError(t, err)
	require.Len(t, states, 5)
	for i, s := range states {
		assert.Equal(t, int64(i+1), s.ID)
	}

	byCategory, err := repos.States.ListByCategoryID(ctx, 3)
	require.NoError(t, err)
	require.Len(t, byCategory, 2)
	assert.Equal(t, int64(3), byCategory[0].ID)
	assert.Equal(t, int64(5), byCategory[1].ID)
}

// TestFixture_ReadsAreIdempotent проверяет, что повторное чтение даёт тот же результат
func TestFixture_ReadsAreIdempotent(t *testing.T) {
	repos := NewFixtureRepositories(nil)
	ctx := context.Background()

	first, err := repos.Products.ListActiveByStateID(ctx, 1)
	require.NoError(t, err)
	first[0].Name = "изменено вызывающим"

	second, err := repos.Products.ListActiveByStateID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "クレンジングフォーム", second[0].Name)
	assert.Len(t, second, 2)
}

func TestFixture_ProductsWithStateName(t *testing.T) {
	repos := NewFixtureRepositories(nil)

	rows, err := repos.Products.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, "清潔感を出したい", rows[0].StateName)
	assert.Equal(t, "毛穴を目立たなくしたい", rows[9].StateName)
}

func TestFixture_GetByID_NotFound(t *testing.T) {
	repos := NewFixtureRepositories(nil)
	ctx := context.Background()

	_, err := repos.States.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repos.Categories.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repos.Products.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestFixture_WritesRejected проверяет, что запись без хранилища отклоняется
func TestFixture_WritesRejected(t *testing.T) {
	repos := NewFixtureRepositories(nil)
	ctx := context.Background()

	_, err := repos.Categories.Create(ctx, &models.CategoryInput{Name: "x"})
	assert.ErrorIs(t, err, ErrStoreNotConfigured)

	_, err = repos.States.Update(ctx, 1, &models.StateInput{Name: "x"})
	assert.ErrorIs(t, err, ErrStoreNotConfigured)

	assert.ErrorIs(t, repos.Products.Delete(ctx, 1), ErrStoreNotConfigured)

	// клик в демо-режиме не ошибка
	assert.NoError(t, repos.Clicks.RecordClick(ctx, &models.ClickLog{StateID: 1, ProductID: 1, SessionID: "abc"}))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"нет строк", pgx.ErrNoRows, ErrNotFound},
		{"уникальность", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"внешний ключ", &pgconn.PgError{Code: "23503"}, ErrInvalidReference},
		{"check", &pgconn.PgError{Code: "23514"}, ErrInvalidInput},
		{"контекст", context.Canceled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(fmt.Errorf("wrapped: %w", tt.err), "state", 1)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.NoError(t, mapError(nil, "state", 1))

	other := errors.New("boom")
	assert.ErrorIs(t, mapError(other, "state", 1), other)
}
