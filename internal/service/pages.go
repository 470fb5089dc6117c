package service

import (
	"context"
	"errors"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/analytics"
	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/SergeiKhy/affiliate-storefront/internal/carousel"
	"github.com/SergeiKhy/affiliate-storefront/internal/datatable"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAnalyticsDays = 7
	maxAnalyticsDays     = 90
	topStatesLimit       = 5
	batchReadLimit       = 8
)

// Источник перехода на страницу предложений, значение параметра mode.
// effects ставит карусель главной страницы.
const (
	SourceHome     = "effects"
	SourceCategory = "category"
)

type HomePage struct {
	States   []models.State   `json:"states"`
	Carousel []carousel.Slide `json:"carousel"`
}

type CategoriesPage struct {
	Categories []models.Category `json:"categories"`
	// Selected nil, если категория не выбрана или не найдена
	Selected *models.Category `json:"selected"`
	States   []models.State   `json:"states"`
}

type CategoryStatesPage struct {
	Category models.Category `json:"category"`
	States   []models.State  `json:"states"`
}

// SuggestionSource откуда пользователь пришёл, нужен только для аналитики
type SuggestionSource struct {
	From       string
	CategoryID int64
	// Position порядковый номер в списке, с 1
	Position int
}

type SuggestionPage struct {
	State     models.State     `json:"state"`
	Products  []models.Product `json:"products"`
	SessionID string           `json:"session_id"`
}

type StateProductCount struct {
	StateID      int64  `json:"state_id"`
	StateName    string `json:"state_name"`
	ProductCount int    `json:"product_count"`
}

type DashboardPage struct {
	StateCount    int                     `json:"state_count"`
	TotalProducts int                     `json:"total_products"`
	WeeklyClicks  int64                   `json:"weekly_clicks"`
	TopStates     []models.ClickAggregate `json:"top_states"`
	StateStats    []StateProductCount     `json:"state_stats"`
}

// TableQuery параметры поиска и сортировки админской таблицы
type TableQuery struct {
	Query string
	Sort  string
	Dir   datatable.Direction
}

// PageService собирает данные страниц витрины и админки
type PageService interface {
	Home(ctx context.Context) (*HomePage, error)
	Categories(ctx context.Context, categoryID *int64) (*CategoriesPage, error)
	CategoryStates(ctx context.Context, categoryID int64) (*CategoryStatesPage, error)
	Suggestion(ctx context.Context, stateID int64, source SuggestionSource) (*SuggestionPage, error)

	AdminDashboard(ctx context.Context) (*DashboardPage, error)
	Analytics(ctx context.Context, days int) (*models.AnalyticsReport, error)
	AdminCategories(ctx context.Context, q TableQuery) (*datatable.View[models.Category], error)
	AdminStates(ctx context.Context, q TableQuery) (*datatable.View[models.State], error)
	AdminProducts(ctx context.Context, q TableQuery) (*datatable.View[models.ProductWithState], error)
}

type PageOption func(*pageService)

func WithPageClock(clock clockwork.Clock) PageOption {
	return func(s *pageService) { s.clock = clock }
}

func WithCarouselRand(r carousel.Rand) PageOption {
	return func(s *pageService) { s.rng = r }
}

type pageService struct {
	catalog    CatalogService
	admin      AdminService
	clicks     repository.ClickRepository
	auth       auth.Authorizer
	dispatcher *analytics.Dispatcher
	clock      clockwork.Clock
	rng        carousel.Rand
	logger     *zap.Logger
}

func NewPageService(
	catalog CatalogService,
	admin AdminService,
	clicks repository.ClickRepository,
	authorizer auth.Authorizer,
	dispatcher *analytics.Dispatcher,
	logger *zap.Logger,
	opts ...PageOption,
) PageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &pageService{
		catalog:    catalog,
		admin:      admin,
		clicks:     clicks,
		auth:       authorizer,
		dispatcher: dispatcher,
		clock:      clockwork.NewRealClock(),
		rng:        carousel.DefaultRand,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *pageService) Home(ctx context.Context) (*HomePage, error) {
	s.dispatcher.Dispatch(ctx, analytics.ViewHome())

	states := s.catalog.GetStates(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	selected := carousel.Select(carousel.ItemsFromStates(states), s.rng)
	return &HomePage{
		States:   states,
		Carousel: carousel.New(selected, carousel.WithRand(s.rng)).Slides(),
	}, nil
}

// Categories категория ищется сначала в уже полученном списке, затем по id
func (s *pageService) Categories(ctx context.Context, categoryID *int64) (*CategoriesPage, error) {
	page := &CategoriesPage{
		Categories: s.catalog.GetCategories(ctx),
		States:     []models.State{},
	}

	if categoryID != nil {
		for i := range page.Categories {
			if page.Categories[i].ID == *categoryID {
				c := page.Categories[i]
				page.Selected = &c
				break
			}
		}
		if page.Selected == nil {
			category, err := s.catalog.GetCategoryByID(ctx, *categoryID)
			switch {
			case err == nil:
				page.Selected = category
			case errors.Is(err, ErrUnavailable):
				return nil, err
			}
		}
		if page.Selected != nil {
			page.States = s.catalog.GetStatesByCategoryID(ctx, page.Selected.ID)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return page, nil
}

// CategoryStates выбор вкладки категории пользователем
func (s *pageService) CategoryStates(ctx context.Context, categoryID int64) (*CategoryStatesPage, error) {
	category, err := s.catalog.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, analytics.SelectCategoryTab(category.Name, category.SortOrder))
	states := s.catalog.GetStatesByCategoryID(ctx, categoryID)
	s.dispatcher.Dispatch(ctx, analytics.ViewEffectList(SourceCategory, category.Name))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &CategoryStatesPage{Category: *category, States: states}, nil
}

// Suggestion состояние и товары читаются параллельно.
// Если запрос отменён, результат не возвращается.
func (s *pageService) Suggestion(ctx context.Context, stateID int64, source SuggestionSource) (*SuggestionPage, error) {
	var (
		state    *models.State
		stateErr error
		products []models.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		state, stateErr = s.catalog.GetStateByID(gctx, stateID)
		return nil
	})
	g.Go(func() error {
		products = s.catalog.GetProductsByStateID(gctx, stateID)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if stateErr != nil {
		return nil, stateErr
	}

	sessionID := NewSessionID()
	switch source.From {
	case SourceHome:
		s.dispatcher.Dispatch(ctx, analytics.SelectState(state.Name).WithSession(sessionID))
	case SourceCategory:
		var categoryName string
		if source.CategoryID > 0 {
			if category, err := s.catalog.GetCategoryByID(ctx, source.CategoryID); err == nil {
				categoryName = category.Name
			}
		}
		event := analytics.SelectEffect(state.ID, state.Name, SourceCategory, categoryName, source.Position)
		s.dispatcher.Dispatch(ctx, event.WithSession(sessionID))
	}
	s.dispatcher.Dispatch(ctx, analytics.ViewSuggestion(state.Name).WithSession(sessionID))

	return &SuggestionPage{State: *state, Products: products, SessionID: sessionID}, nil
}

func (s *pageService) AdminDashboard(ctx context.Context) (*DashboardPage, error) {
	if _, err := s.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	states := s.catalog.GetStates(ctx)
	counts := make([]int, len(states))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchReadLimit)
	for i, st := range states {
		g.Go(func() error {
			counts[i] = len(s.catalog.GetProductsByStateID(gctx, st.ID))
			return nil
		})
	}

	since := s.clock.Now().Add(-defaultAnalyticsDays * 24 * time.Hour)
	var (
		weekly int64
		top    []models.ClickAggregate
	)
	g.Go(func() error {
		total, err := s.clicks.CountSince(gctx, since)
		if err != nil {
			s.logger.Error("Ошибка подсчёта кликов за неделю", zap.Error(err))
			return nil
		}
		weekly = total
		return nil
	})
	g.Go(func() error {
		agg, err := s.clicks.AggregateClicks(gctx, models.ClickDimensionState, since)
		if err != nil {
			s.logger.Error("Ошибка агрегации кликов по состояниям", zap.Error(err))
			return nil
		}
		top = agg
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page := &DashboardPage{
		StateCount:   len(states),
		WeeklyClicks: weekly,
		TopStates:    []models.ClickAggregate{},
		StateStats:   make([]StateProductCount, 0, len(states)),
	}
	for i, st := range states {
		page.TotalProducts += counts[i]
		page.StateStats = append(page.StateStats, StateProductCount{
			StateID:      st.ID,
			StateName:    st.Name,
			ProductCount: counts[i],
		})
	}
	if len(top) > topStatesLimit {
		top = top[:topStatesLimit]
	}
	if top != nil {
		page.TopStates = top
	}
	return page, nil
}

// Analytics отчёт за последние days дней, 0 означает неделю
func (s *pageService) Analytics(ctx context.Context, days int) (*models.AnalyticsReport, error) {
	if _, err := s.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if days == 0 {
		days = defaultAnalyticsDays
	}
	if days < 1 || days > maxAnalyticsDays {
		return nil, ErrInvalidDays
	}

	report := &models.AnalyticsReport{
		Days:  days,
		Since: s.clock.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.TotalClicks, err = s.clicks.CountSince(gctx, report.Since)
		return err
	})
	g.Go(func() error {
		var err error
		report.StateClicks, err = s.clicks.AggregateClicks(gctx, models.ClickDimensionState, report.Since)
		return err
	})
	g.Go(func() error {
		var err error
		report.ProductClicks, err = s.clicks.AggregateClicks(gctx, models.ClickDimensionProduct, report.Since)
		return err
	})
	g.Go(func() error {
		var err error
		report.Daily, err = s.clicks.GetDailyStats(gctx, report.Since)
		return err
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Error("Ошибка получения аналитики", zap.Int("days", days), zap.Error(err))
		return nil, ErrUnavailable
	}

	if report.StateClicks == nil {
		report.StateClicks = []models.ClickAggregate{}
	}
	if report.ProductClicks == nil {
		report.ProductClicks = []models.ClickAggregate{}
	}
	if report.Daily == nil {
		report.Daily = []models.DailyClickStats{}
	}
	return report, nil
}

// renderTable строит представление админской таблицы.
// Правка, удаление и создание идут через отдельные эндпоинты админки,
// поэтому в представлении они всегда отмечены доступными.
func renderTable[T any](rows []T, opts datatable.Options[T], q TableQuery) (*datatable.View[T], error) {
	table := datatable.New(rows, opts)
	table.Search(q.Query)
	if q.Sort != "" {
		if err := table.SortBy(q.Sort, q.Dir); err != nil {
			return nil, err
		}
	}
	view := table.Render()
	view.CanCreate = true
	for i := range view.Rows {
		view.Rows[i].CanEdit = true
		view.Rows[i].CanDelete = true
	}
	return &view, nil
}

var categoryColumns = []datatable.Column{
	{Key: "id", Label: "ID", Sortable: true},
	{Key: "name", Label: "カテゴリ名", Sortable: true},
	{Key: "sort_order", Label: "並び順", Sortable: true},
	{Key: "created_at", Label: "作成日", Sortable: true},
}

func categoryField(c models.Category, key string) any {
	switch key {
	case "id":
		return c.ID
	case "name":
		return c.Name
	case "sort_order":
		return c.SortOrder
	case "created_at":
		return c.CreatedAt
	}
	return nil
}

func (s *pageService) AdminCategories(ctx context.Context, q TableQuery) (*datatable.View[models.Category], error) {
	rows, err := s.admin.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return renderTable(rows, datatable.Options[models.Category]{
		Columns:      categoryColumns,
		SearchFields: []string{"name"},
		Field:        categoryField,
	}, q)
}

var stateColumns = []datatable.Column{
	{Key: "id", Label: "ID", Sortable: true},
	{Key: "name", Label: "名前", Sortable: true},
	{Key: "description", Label: "説明"},
	{Key: "category_name", Label: "カテゴリ", Sortable: true},
	{Key: "sort_order", Label: "並び順", Sortable: true},
}

func (s *pageService) AdminStates(ctx context.Context, q TableQuery) (*datatable.View[models.State], error) {
	rows, err := s.admin.ListStates(ctx)
	if err != nil {
		return nil, err
	}

	categoryNames := make(map[int64]string)
	for _, c := range s.catalog.GetCategories(ctx) {
		categoryNames[c.ID] = c.Name
	}

	return renderTable(rows, datatable.Options[models.State]{
		Columns:      stateColumns,
		SearchFields: []string{"name", "description", "category_name"},
		Field: func(st models.State, key string) any {
			switch key {
			case "id":
				return st.ID
			case "name":
				return st.Name
			case "description":
				return st.Description
			case "category_name":
				if st.CategoryID == nil {
					return ""
				}
				return categoryNames[*st.CategoryID]
			case "sort_order":
				return st.SortOrder
			}
			return nil
		},
	}, q)
}

var productColumns = []datatable.Column{
	{Key: "id", Label: "ID", Sortable: true},
	{Key: "name", Label: "商品名", Sortable: true},
	{Key: "brand", Label: "ブランド", Sortable: true},
	{Key: "state_name", Label: "状態", Sortable: true},
	{Key: "status", Label: "ステータス", Sortable: true},
}

func productField(p models.ProductWithState, key string) any {
	switch key {
	case "id":
		return p.ID
	case "name":
		return p.Name
	case "brand":
		return p.Brand
	case "state_name":
		return p.StateName
	case "status":
		return string(p.Status)
	}
	return nil
}

func (s *pageService) AdminProducts(ctx context.Context, q TableQuery) (*datatable.View[models.ProductWithState], error) {
	rows, err := s.admin.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return renderTable(rows, datatable.Options[models.ProductWithState]{
		Columns:      productColumns,
		SearchFields: []string{"name", "brand", "state_name"},
		Field:        productField,
	}, q)
}
