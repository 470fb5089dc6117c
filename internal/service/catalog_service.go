package service

import (
	"context"
	"errors"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService чтение витрины для публичных страниц.
// Списки при сбое хранилища возвращаются пустыми, ошибка только логируется.
type CatalogService interface {
	GetCategories(ctx context.Context) []models.Category
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	GetStates(ctx context.Context) []models.State
	GetStatesByCategoryID(ctx context.Context, categoryID int64) []models.State
	GetStateByID(ctx context.Context, id int64) (*models.State, error)
	GetProductsByStateID(ctx context.Context, stateID int64) []models.Product
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	LogClick(ctx context.Context, stateID, productID int64, sessionID string)
}

type catalogService struct {
	repos  *repository.Repositories
	clicks ClickProcessor
	logger *zap.Logger
}

// NewCatalogService создаёт сервис каталога.
// Если clicks == nil, клики пишутся синхронно прямо в репозиторий.
func NewCatalogService(repos *repository.Repositories, clicks ClickProcessor, logger *zap.Logger) CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogService{repos: repos, clicks: clicks, logger: logger}
}

func (s *catalogService) GetCategories(ctx context.Context) []models.Category {
	categories, err := s.repos.Categories.List(ctx)
	if err != nil {
		s.logger.Error("Ошибка получения категорий", zap.Error(err))
		return []models.Category{}
	}
	return categories
}

func (s *catalogService) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.repos.Categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		s.logger.Error("Ошибка получения категории", zap.Int64("id", id), zap.Error(err))
		return nil, ErrUnavailable
	}
	return category, nil
}

func (s *catalogService) GetStates(ctx context.Context) []models.State {
	states, err := s.repos.States.List(ctx)
	if err != nil {
		s.logger.Error("Ошибка получения состояний", zap.Error(err))
		return []models.State{}
	}
	return states
}

func (s *catalogService) GetStatesByCategoryID(ctx context.Context, categoryID int64) []models.State {
	states, err := s.repos.States.ListByCategoryID(ctx, categoryID)
	if err != nil {
		s.logger.Error("Ошибка получения состояний категории",
			zap.Int64("category_id", categoryID),
			zap.Error(err),
		)
		return []models.State{}
	}
	return states
}

func (s *catalogService) GetStateByID(ctx context.Context, id int64) (*models.State, error) {
	state, err := s.repos.States.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStateNotFound
		}
		s.logger.Error("Ошибка получения состояния", zap.Int64("id", id), zap.Error(err))
		return nil, ErrUnavailable
	}
	return state, nil
}

// GetProductsByStateID только активные товары, по возрастанию id
func (s *catalogService) GetProductsByStateID(ctx context.Context, stateID int64) []models.Product {
	products, err := s.repos.Products.ListActiveByStateID(ctx, stateID)
	if err != nil {
		s.logger.Error("Ошибка получения товаров",
			zap.Int64("state_id", stateID),
			zap.Error(err),
		)
		return []models.Product{}
	}
	return products
}

func (s *catalogService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repos.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("Ошибка получения товара", zap.Int64("id", id), zap.Error(err))
		return nil, ErrUnavailable
	}
	return product, nil
}

// LogClick не блокирует вызывающего и не возвращает ошибок
func (s *catalogService) LogClick(ctx context.Context, stateID, productID int64, sessionID string) {
	click := &models.ClickLog{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		StateID:   stateID,
		ProductID: productID,
		SessionID: sessionID,
	}

	if s.clicks != nil {
		if err := s.clicks.RecordClick(ctx, click); err != nil {
			s.logger.Warn("Клик не поставлен в очередь",
				zap.Int64("product_id", productID),
				zap.Error(err),
			)
		}
		return
	}

	if err := s.repos.Clicks.RecordClick(ctx, click); err != nil {
		s.logger.Error("Ошибка записи клика",
			zap.Int64("state_id", stateID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
	}
}
