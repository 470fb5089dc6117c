package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/jackc/pgx/v5"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id int64, input *models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

var categoryColumns = []string{"id", "name", "sort_order", "created_at", "updated_at"}

type categoryRepository struct {
	db *PostgresDB
}

func NewCategoryRepository(db *PostgresDB) CategoryRepository {
	return &categoryRepository{db: db}
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	query, args, err := psql.Select(categoryColumns...).
		From("categories").
		OrderBy("sort_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build categories query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query, args, err := psql.Select(categoryColumns...).
		From("categories").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build category query: %w", err)
	}

	c, err := scanCategory(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "category", id)
	}
	return c, nil
}

func (r *categoryRepository) Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	query, args, err := psql.Insert("categories").
		Columns("name", "sort_order").
		Values(input.Name, input.SortOrder).
		Suffix("RETURNING " + strings.Join(categoryColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build category insert: %w", err)
	}

	c, err := scanCategory(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "category", input.Name)
	}
	return c, nil
}

func (r *categoryRepository) Update(ctx context.Context, id int64, input *models.CategoryInput) (*models.Category, error) {
	query, args, err := psql.Update("categories").
		Set("name", input.Name).
		Set("sort_order", input.SortOrder).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(categoryColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build category update: %w", err)
	}

	c, err := scanCategory(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "category", id)
	}
	return c, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "categories", "category", id)
}

// deleteByID удаляет строку по id, отсутствие строки даёт ErrNotFound
func deleteByID(ctx context.Context, db *PostgresDB, table, entity string, id int64) error {
	query, args, err := psql.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s delete: %w", entity, err)
	}

	result, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, entity, id)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}

	return nil
}
