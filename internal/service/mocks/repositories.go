package mocks

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
)

// Set набор in-memory репозиториев, связанных между собой как в базе
type Set struct {
	Categories *MockCategoryRepository
	States     *MockStateRepository
	Products   *MockProductRepository
	Clicks     *MockClickRepository
	Profiles   *MockProfileRepository
}

func NewSet() *Set {
	s := &Set{
		Categories: &MockCategoryRepository{items: map[int64]models.Category{}, nextID: 1},
		States:     &MockStateRepository{items: map[int64]models.State{}, nextID: 1},
		Products:   &MockProductRepository{items: map[int64]models.Product{}, nextID: 1},
		Clicks:     &MockClickRepository{},
		Profiles:   &MockProfileRepository{profiles: map[string]models.Profile{}},
	}
	s.Categories.states = s.States
	s.States.categories = s.Categories
	s.States.products = s.Products
	s.Products.states = s.States
	s.Clicks.set = s
	return s
}

func (s *Set) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Categories: s.Categories,
		States:     s.States,
		Products:   s.Products,
		Clicks:     s.Clicks,
		Profiles:   s.Profiles,
	}
}

// errState общая инъекция ошибок: Err возвращается из любой операции
type errState struct {
	mu  sync.RWMutex
	Err error
	// Calls число обращений к репозиторию
	Calls int
}

func (e *errState) SetError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Err = err
}

func (e *errState) CallCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.Calls
}

// MockCategoryRepository implements repository.CategoryRepository for testing
type MockCategoryRepository struct {
	errState
	items  map[int64]models.Category
	nextID int64
	states *MockStateRepository
}

func (m *MockCategoryRepository) begin() error {
	m.mu.Lock()
	m.Calls++
	return m.Err
}

func sortCategories(items []models.Category) {
	slices.SortFunc(items, func(a, b models.Category) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.ID, b.ID))
	})
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	sortCategories(out)
	return out, nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, repository.ErrNotFound)
	}
	return &c, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := models.Category{ID: m.nextID, Name: input.Name, SortOrder: input.SortOrder, CreatedAt: now, UpdatedAt: now}
	m.nextID++
	m.items[c.ID] = c
	return &c, nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, id int64, input *models.CategoryInput) (*models.Category, error) {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, repository.ErrNotFound)
	}
	c.Name = input.Name
	c.SortOrder = input.SortOrder
	c.UpdatedAt = time.Now().UTC()
	m.items[id] = c
	return &c, nil
}

// Delete отвязывает состояния, как ON DELETE SET NULL
func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	err := m.begin()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if _, ok := m.items[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("category %d: %w", id, repository.ErrNotFound)
	}
	delete(m.items, id)
	m.mu.Unlock()

	m.states.detachCategory(id)
	return nil
}

func (m *MockCategoryRepository) exists(id int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[id]
	return ok
}

// MockStateRepository implements repository.StateRepository for testing
type MockStateRepository struct {
	errState
	items      map[int64]models.State
	nextID     int64
	categories *MockCategoryRepository
	products   *MockProductRepository
}

func (m *MockStateRepository) begin() error {
	m.mu.Lock()
	m.Calls++
	return m.Err
}

func (m *MockStateRepository) sorted(filter func(models.State) bool) []models.State {
	out := make([]models.State, 0, len(m.items))
	for _, s := range m.items {
		if filter == nil || filter(s) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b models.State) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (m *MockStateRepository) List(ctx context.Context) ([]models.State, error) {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.sorted(nil), nil
}

func (m *MockStateRepository) ListByCategoryID(ctx context.Context, categoryID int64) ([]models.State, error) {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.sorted(func(s models.State) bool {
		return s.CategoryID != nil && *s.CategoryID == categoryID
	}), nil
}

func (m *MockStateRepository) GetByID(ctx context.Context, id int64) (*models.State, error) {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("state %d: %w", id, repository.ErrNotFound)
	}
	return &s, nil
}

func (m *MockStateRepository) checkCategory(categoryID *int64) error {
	if categoryID != nil && !m.categories.exists(*categoryID) {
		return fmt.Errorf("category %d: %w", *categoryID, repository.ErrInvalidReference)
	}
	return nil
}

func (m *MockStateRepository) Create(ctx context.Context, input *models.StateInput) (*models.State, error) {
	if err := m.checkCategory(input.CategoryID); err != nil {
		return nil, err
	}
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	s := models.State{
		ID:          m.nextID,
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		CategoryID:  input.CategoryID,
		SortOrder:   input.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.nextID++
	m.items[s.ID] = s
	return &s, nil
}

func (m *MockStateRepository) Update(ctx context.Context, id int64, input *models.StateInput) (*models.State, error) {
	if err := m.checkCategory(input.CategoryID); err != nil {
		return nil, err
	}
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("state %d: %w", id, repository.ErrNotFound)
	}
	s.Name = input.Name
	s.Description = input.Description
	s.ImageURL = input.ImageURL
	s.CategoryID = input.CategoryID
	s.SortOrder = input.SortOrder
	s.UpdatedAt = time.Now().UTC()
	m.items[id] = s
	return &s, nil
}

// Delete отклоняется, пока на состояние ссылаются товары (ON DELETE RESTRICT)
func (m *MockStateRepository) Delete(ctx context.Context, id int64) error {
	if m.products.referencesState(id) {
		return fmt.Errorf("state %d: %w", id, repository.ErrInvalidReference)
	}
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("state %d: %w", id, repository.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

func (m *MockStateRepository) detachCategory(categoryID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.items {
		if s.CategoryID != nil && *s.CategoryID == categoryID {
			s.CategoryID = nil
			m.items[id] = s
		}
	}
}

func (m *MockStateRepository) name(id int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.items[id]
	return s.Name, ok
}

// MockProductRepository implements repository.ProductRepository for testing
type MockProductRepository struct {
	errState
	items  map[int64]models.Product
	nextID int64
	states *MockStateRepository
}

func (m *MockProductRepository) begin() error {
	m.mu.Lock()
	m.Calls++
	return m.Err
}

func (m *MockProductRepository) sorted() []models.Product {
	out := make([]models.Product, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (m *MockProductRepository) ListActiveByStateID(ctx context.Context, stateID int64) ([]models.Product, error) {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, p := range m.sorted() {
		if p.StateID == stateID && p.Status == models.ProductStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockProductRepository) ListAll(ctx context.Context) ([]models.ProductWithState, error) {
	err := m.begin()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	products := m.sorted()
	m.mu.Unlock()

	out := make([]models.ProductWithState, 0, len(products))
	for _, p := range products {
		name, _ := m.states.name(p.StateID)
		out = append(out, models.ProductWithState{Product: p, StateName: name})
	}
	return out, nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	p, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}

func productFromInput(id int64, input *models.ProductInput) models.Product {
	return models.Product{
		ID:           id,
		Name:         input.Name,
		Brand:        input.Brand,
		AffiliateURL: input.AffiliateURL,
		ImageURL:     input.ImageURL,
		StateID:      input.StateID,
		Description:  input.Description,
		Status:       input.Status,
	}
}

func (m *MockProductRepository) Create(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	if _, ok := m.states.name(input.StateID); !ok {
		return nil, fmt.Errorf("state %d: %w", input.StateID, repository.ErrInvalidReference)
	}
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	p := productFromInput(m.nextID, input)
	m.nextID++
	m.items[p.ID] = p
	return &p, nil
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error) {
	if _, ok := m.states.name(input.StateID); !ok {
		return nil, fmt.Errorf("state %d: %w", input.StateID, repository.ErrInvalidReference)
	}
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, ok := m.items[id]; !ok {
		return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	p := productFromInput(id, input)
	m.items[id] = p
	return &p, nil
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	err := m.begin()
	defer m.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

func (m *MockProductRepository) lookup(id int64) (models.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.items[id]
	return p, ok
}

func (m *MockProductRepository) referencesState(stateID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.items {
		if p.StateID == stateID {
			return true
		}
	}
	return false
}

// MockClickRepository implements repository.ClickRepository for testing
type MockClickRepository struct {
	errState
	clicks []models.ClickLog
	set    *Set
}

func (m *MockClickRepository) RecordClick(ctx context.Context, click *models.ClickLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	m.clicks = append(m.clicks, *click)
	return nil
}

// Recorded копия записанных кликов
func (m *MockClickRepository) Recorded() []models.ClickLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.clicks)
}

func (m *MockClickRepository) since(since time.Time) ([]models.ClickLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.ClickLog
	for _, c := range m.clicks {
		if !c.Timestamp.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockClickRepository) AggregateClicks(ctx context.Context, dimension models.ClickDimension, since time.Time) ([]models.ClickAggregate, error) {
	clicks, err := m.since(since)
	if err != nil {
		return nil, err
	}

	counts := map[int64]int64{}
	for _, c := range clicks {
		switch dimension {
		case models.ClickDimensionState:
			counts[c.StateID]++
		case models.ClickDimensionProduct:
			counts[c.ProductID]++
		default:
			return nil, fmt.Errorf("dimension %q: %w", dimension, repository.ErrInvalidInput)
		}
	}

	out := make([]models.ClickAggregate, 0, len(counts))
	for id, n := range counts {
		agg := models.ClickAggregate{ID: id, Count: n}
		if dimension == models.ClickDimensionState {
			agg.Name, _ = m.set.States.name(id)
		} else if p, ok := m.set.Products.lookup(id); ok {
			agg.Name, agg.Brand = p.Name, p.Brand
		}
		out = append(out, agg)
	}
	slices.SortFunc(out, func(a, b models.ClickAggregate) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (m *MockClickRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	clicks, err := m.since(since)
	if err != nil {
		return 0, err
	}
	return int64(len(clicks)), nil
}

func (m *MockClickRepository) GetDailyStats(ctx context.Context, since time.Time) ([]models.DailyClickStats, error) {
	clicks, err := m.since(since)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, c := range clicks {
		counts[c.Timestamp.UTC().Format(time.DateOnly)]++
	}
	out := make([]models.DailyClickStats, 0, len(counts))
	for day, n := range counts {
		out = append(out, models.DailyClickStats{Date: day, Clicks: n})
	}
	slices.SortFunc(out, func(a, b models.DailyClickStats) int { return cmp.Compare(a.Date, b.Date) })
	return out, nil
}

// MockProfileRepository implements repository.ProfileRepository for testing
type MockProfileRepository struct {
	errState
	profiles map[string]models.Profile
}

func (m *MockProfileRepository) Add(userID, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	m.profiles[userID] = models.Profile{UserID: userID, Role: role, CreatedAt: now, UpdatedAt: now}
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, repository.ErrNotFound)
	}
	return &p, nil
}
