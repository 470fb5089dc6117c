package repository

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"go.uber.org/zap"
)

// Демо-данные, которые отдаются, пока хранилище не настроено.
// Набор фиксирован, записи отклоняются с ErrStoreNotConfigured.

func int64Ptr(v int64) *int64 { return &v }

func fixtureCategories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "スキンケア", SortOrder: 1},
		{ID: 2, Name: "メイク", SortOrder: 2},
		{ID: 3, Name: "ヒゲ・毛穴ケア", SortOrder: 3},
	}
}

func fixtureStates() []models.State {
	return []models.State{
		{ID: 1, Name: "清潔感を出したい", Description: "清潔感のある印象を与えたい人向け", ImageURL: "/images/clean.jpg", CategoryID: int64Ptr(1), SortOrder: 1},
		{ID: 2, Name: "赤みをなくしたい", Description: "肌の赤みを自然に抑えたい人向け", ImageURL: "/images/redness.jpg", CategoryID: int64Ptr(1), SortOrder: 2},
		{ID: 3, Name: "青ヒゲを目立たなくしたい", Description: "青ヒゲを目立たなくしたい人向け", ImageURL: "/images/beard.jpg", CategoryID: int64Ptr(3), SortOrder: 3},
		{ID: 4, Name: "肌を明るくしたい", Description: "肌を明るく見せたい人向け", ImageURL: "/images/bright.jpg", CategoryID: int64Ptr(2), SortOrder: 4},
		{ID: 5, Name: "毛穴を目立たなくしたい", Description: "毛穴を目立たなくしたい人向け", ImageURL: "/images/pores.jpg", CategoryID: int64Ptr(3), SortOrder: 5},
	}
}

func fixtureProducts() []models.Product {
	const active = models.ProductStatusActive
	return []models.Product{
		{ID: 1, Name: "クレンジングフォーム", Brand: "資生堂", AffiliateURL: "https://www.amazon.co.jp/dp/B08XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/cleansing.jpg", StateID: 1, Description: "毛穴の汚れをしっかり落とす洗顔料", Status: active},
		{ID: 2, Name: "化粧水", Brand: "SK-II", AffiliateURL: "https://www.amazon.co.jp/dp/B09XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/toner.jpg", StateID: 1, Description: "肌を清潔に保つ化粧水", Status: active},
		{ID: 3, Name: "CICA鎮静ローション", Brand: "VT Cosmetics", AffiliateURL: "https://www.amazon.co.jp/dp/B10XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/cica.jpg", StateID: 2, Description: "肌の赤みを抑える韓国コスメ定番ローション", Status: active},
		{ID: 4, Name: "アロエジェル", Brand: "ナチュラルハウス", AffiliateURL: "https://www.amazon.co.jp/dp/B11XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/aloe.jpg", StateID: 2, Description: "敏感肌にも優しいアロエジェル", Status: active},
		{ID: 5, Name: "カラーコレクティングプライマー", Brand: "NYX", AffiliateURL: "https://www.amazon.co.jp/dp/B12XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/orange-primer.jpg", StateID: 3, Description: "青ヒゲを隠すオレンジ系プライマー", Status: active},
		{ID: 6, Name: "コンシーラー", Brand: "NARS", AffiliateURL: "https://www.amazon.co.jp/dp/B13XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/concealer.jpg", StateID: 3, Description: "青ヒゲをカバーする高カバーコンシーラー", Status: active},
		{ID: 7, Name: "ビタミンCセラム", Brand: "The Ordinary", AffiliateURL: "https://www.amazon.co.jp/dp/B14XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/vitamin-c.jpg", StateID: 4, Description: "肌を明るくするビタミンCセラム", Status: active},
		{ID: 8, Name: "ハイライター", Brand: "Fenty Beauty", AffiliateURL: "https://www.amazon.co.jp/dp/B15XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/highlighter.jpg", StateID: 4, Description: "肌に自然な光を与えるハイライター", Status: active},
		{ID: 9, Name: "毛穴パック", Brand: "パック・オブ・ペパー", AffiliateURL: "https://www.amazon.co.jp/dp/B16XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/pore-pack.jpg", StateID: 5, Description: "毛穴の汚れを吸着するパック", Status: active},
		{ID: 10, Name: "毛穴プライマー", Brand: "ベネフィット", AffiliateURL: "https://www.amazon.co.jp/dp/B17XXXXXXX?tag=YOURTAG-22", ImageURL: "/images/pore-primer.jpg", StateID: 5, Description: "毛穴を目立たなくするプライマー", Status: active},
	}
}

// NewFixtureRepositories собирает репозитории на демо-данных
func NewFixtureRepositories(logger *zap.Logger) *Repositories {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repositories{
		Categories: fixtureCategoryRepository{},
		States:     fixtureStateRepository{},
		Products:   fixtureProductRepository{},
		Clicks:     fixtureClickRepository{logger: logger},
		Profiles:   fixtureProfileRepository{},
		Fixture:    true,
	}
}

type fixtureCategoryRepository struct{}

func (fixtureCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	return fixtureCategories(), nil
}

func (fixtureCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	for _, c := range fixtureCategories() {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
}

func (fixtureCategoryRepository) Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	return nil, ErrStoreNotConfigured
}

func (fixtureCategoryRepository) Update(ctx context.Context, id int64, input *models.CategoryInput) (*models.Category, error) {
	return nil, ErrStoreNotConfigured
}

func (fixtureCategoryRepository) Delete(ctx context.Context, id int64) error {
	return ErrStoreNotConfigured
}

type fixtureStateRepository struct{}

func (fixtureStateRepository) List(ctx context.Context) ([]models.State, error) {
	return fixtureStates(), nil
}

func (fixtureStateRepository) ListByCategoryID(ctx context.Context, categoryID int64) ([]models.State, error) {
	states := fixtureStates()
	return slices.DeleteFunc(states, func(s models.State) bool {
		return s.CategoryID == nil || *s.CategoryID != categoryID
	}), nil
}

func (fixtureStateRepository) GetByID(ctx context.Context, id int64) (*models.State, error) {
	for _, s := range fixtureStates() {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("state %d: %w", id, ErrNotFound)
}

func (fixtureStateRepository) Create(ctx context.Context, input *models.StateInput) (*models.State, error) {
	return nil, ErrStoreNotConfigured
}

func (fixtureStateRepository) Update(ctx context.Context, id int64, input *models.StateInput) (*models.State, error) {
	return nil, ErrStoreNotConfigured
}

func (fixtureStateRepository) Delete(ctx context.Context, id int64) error {
	return ErrStoreNotConfigured
}

type fixtureProductRepository struct{}

func (fixtureProductRepository) ListActiveByStateID(ctx context.Context, stateID int64) ([]models.Product, error) {
	products := fixtureProducts()
	return slices.DeleteFunc(products, func(p models.Product) bool {
		return p.StateID != stateID || p.Status != models.ProductStatusActive
	}), nil
}

func (fixtureProductRepository) ListAll(ctx context.Context) ([]models.ProductWithState, error) {
	names := make(map[int64]string)
	for _, s := range fixtureStates() {
		names[s.ID] = s.Name
	}

	products := fixtureProducts()
	rows := make([]models.ProductWithState, 0, len(products))
	for _, p := range products {
		rows = append(rows, models.ProductWithState{Product: p, StateName: names[p.StateID]})
	}
	return rows, nil
}

func (fixtureProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	for _, p := range fixtureProducts() {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
}

func (fixtureProductRepository) Create(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	return nil, ErrStoreNotConfigured
}

func (fixtureProductRepository) Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error) {
	return nil, ErrStoreNotConfigured
}

func (fixtureProductRepository) Delete(ctx context.Context, id int64) error {
	return ErrStoreNotConfigured
}

// fixtureClickRepository в демо-режиме клики только логируются
type fixtureClickRepository struct {
	logger *zap.Logger
}

func (r fixtureClickRepository) RecordClick(ctx context.Context, click *models.ClickLog) error {
	r.logger.Info("Click logged (demo mode)",
		zap.Int64("state_id", click.StateID),
		zap.Int64("product_id", click.ProductID),
		zap.String("session_id", click.SessionID),
	)
	return nil
}

func (fixtureClickRepository) AggregateClicks(ctx context.Context, dimension models.ClickDimension, since time.Time) ([]models.ClickAggregate, error) {
	return []models.ClickAggregate{}, nil
}

func (fixtureClickRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

func (fixtureClickRepository) GetDailyStats(ctx context.Context, since time.Time) ([]models.DailyClickStats, error) {
	return []models.DailyClickStats{}, nil
}

type fixtureProfileRepository struct{}

func (fixtureProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return nil, ErrStoreNotConfigured
}
