package service

import (
	"context"
	"errors"

	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
	"go.uber.org/zap"
)

// AdminService изменения каталога из админки.
// Каждая операция проходит authorize → validate → write ровно один раз
// и никогда не возвращает ошибку, только MutationResult.
type AdminService interface {
	CreateCategory(ctx context.Context, input models.CategoryInput) models.MutationResult[models.Category]
	UpdateCategory(ctx context.Context, id int64, input models.CategoryInput) models.MutationResult[models.Category]
	DeleteCategory(ctx context.Context, id int64) models.MutationResult[models.Category]

	CreateState(ctx context.Context, input models.StateInput) models.MutationResult[models.State]
	UpdateState(ctx context.Context, id int64, input models.StateInput) models.MutationResult[models.State]
	DeleteState(ctx context.Context, id int64) models.MutationResult[models.State]

	CreateProduct(ctx context.Context, input models.ProductInput) models.MutationResult[models.Product]
	UpdateProduct(ctx context.Context, id int64, input models.ProductInput) models.MutationResult[models.Product]
	DeleteProduct(ctx context.Context, id int64) models.MutationResult[models.Product]

	// Чтение для таблиц админки, все статусы товаров
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListStates(ctx context.Context) ([]models.State, error)
	ListProducts(ctx context.Context) ([]models.ProductWithState, error)
}

type adminService struct {
	repos     *repository.Repositories
	auth      auth.Authorizer
	validator *Validator
	logger    *zap.Logger
}

func NewAdminService(
	repos *repository.Repositories,
	authorizer auth.Authorizer,
	validator *Validator,
	logger *zap.Logger,
) AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adminService{
		repos:     repos,
		auth:      authorizer,
		validator: validator,
		logger:    logger,
	}
}

// mutate общий конвейер админских операций
func mutate[T any](
	ctx context.Context,
	s *adminService,
	op string,
	input any,
	write func(ctx context.Context) (*T, error),
) models.MutationResult[T] {
	profile, err := s.auth.RequireAdmin(ctx)
	if err != nil {
		s.logger.Warn("Отказ в админской операции", zap.String("op", op), zap.Error(err))
		res := models.Failed[T](models.StageAuthorizing, MsgNotAuthorized)
		res.Redirect = auth.LoginPath
		return res
	}

	if input != nil {
		if verr := s.validator.Validate(input); verr != nil {
			return models.Failed[T](models.StageValidating, verr.Message)
		}
	}

	data, err := write(ctx)
	if err != nil {
		s.logger.Error("Ошибка админской операции",
			zap.String("op", op),
			zap.String("user_id", profile.UserID),
			zap.Error(err),
		)
		return models.Failed[T](models.StageWriting, writeErrorMessage(err))
	}

	s.logger.Info("Админская операция выполнена",
		zap.String("op", op),
		zap.String("user_id", profile.UserID),
	)
	return models.Succeeded(data)
}

func writeErrorMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrStoreNotConfigured):
		return MsgStoreUnavailable
	case errors.Is(err, repository.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, repository.ErrInvalidReference):
		return MsgInUse
	case errors.Is(err, repository.ErrConflict):
		return MsgConflict
	case errors.Is(err, repository.ErrInvalidInput):
		return MsgInvalidInput
	default:
		return MsgGenericError
	}
}

func (s *adminService) CreateCategory(ctx context.Context, input models.CategoryInput) models.MutationResult[models.Category] {
	input = normalizeCategory(input)
	return mutate(ctx, s, "create_category", &input, func(ctx context.Context) (*models.Category, error) {
		return s.repos.Categories.Create(ctx, &input)
	})
}

func (s *adminService) UpdateCategory(ctx context.Context, id int64, input models.CategoryInput) models.MutationResult[models.Category] {
	input = normalizeCategory(input)
	return mutate(ctx, s, "update_category", &input, func(ctx context.Context) (*models.Category, error) {
		return s.repos.Categories.Update(ctx, id, &input)
	})
}

// DeleteCategory состояния категории остаются без категории
func (s *adminService) DeleteCategory(ctx context.Context, id int64) models.MutationResult[models.Category] {
	return mutate(ctx, s, "delete_category", nil, func(ctx context.Context) (*models.Category, error) {
		category, err := s.repos.Categories.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repos.Categories.Delete(ctx, id); err != nil {
			return nil, err
		}
		return category, nil
	})
}

func (s *adminService) CreateState(ctx context.Context, input models.StateInput) models.MutationResult[models.State] {
	input = normalizeState(input)
	return mutate(ctx, s, "create_state", &input, func(ctx context.Context) (*models.State, error) {
		return s.repos.States.Create(ctx, &input)
	})
}

func (s *adminService) UpdateState(ctx context.Context, id int64, input models.StateInput) models.MutationResult[models.State] {
	input = normalizeState(input)
	return mutate(ctx, s, "update_state", &input, func(ctx context.Context) (*models.State, error) {
		return s.repos.States.Update(ctx, id, &input)
	})
}

// DeleteState отклоняется, пока у состояния есть товары
func (s *adminService) DeleteState(ctx context.Context, id int64) models.MutationResult[models.State] {
	return mutate(ctx, s, "delete_state", nil, func(ctx context.Context) (*models.State, error) {
		state, err := s.repos.States.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repos.States.Delete(ctx, id); err != nil {
			return nil, err
		}
		return state, nil
	})
}

func (s *adminService) CreateProduct(ctx context.Context, input models.ProductInput) models.MutationResult[models.Product] {
	input = normalizeProduct(input)
	return mutate(ctx, s, "create_product", &input, func(ctx context.Context) (*models.Product, error) {
		return s.repos.Products.Create(ctx, &input)
	})
}

func (s *adminService) UpdateProduct(ctx context.Context, id int64, input models.ProductInput) models.MutationResult[models.Product] {
	input = normalizeProduct(input)
	return mutate(ctx, s, "update_product", &input, func(ctx context.Context) (*models.Product, error) {
		return s.repos.Products.Update(ctx, id, &input)
	})
}

func (s *adminService) DeleteProduct(ctx context.Context, id int64) models.MutationResult[models.Product] {
	return mutate(ctx, s, "delete_product", nil, func(ctx context.Context) (*models.Product, error) {
		product, err := s.repos.Products.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repos.Products.Delete(ctx, id); err != nil {
			return nil, err
		}
		return product, nil
	})
}

func (s *adminService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if _, err := s.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	categories, err := s.repos.Categories.List(ctx)
	if err != nil {
		s.logger.Error("Ошибка получения категорий", zap.Error(err))
		return []models.Category{}, nil
	}
	return categories, nil
}

func (s *adminService) ListStates(ctx context.Context) ([]models.State, error) {
	if _, err := s.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	states, err := s.repos.States.List(ctx)
	if err != nil {
		s.logger.Error("Ошибка получения состояний", zap.Error(err))
		return []models.State{}, nil
	}
	return states, nil
}

func (s *adminService) ListProducts(ctx context.Context) ([]models.ProductWithState, error) {
	if _, err := s.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	products, err := s.repos.Products.ListAll(ctx)
	if err != nil {
		s.logger.Error("Ошибка получения товаров", zap.Error(err))
		return []models.ProductWithState{}, nil
	}
	return products, nil
}
