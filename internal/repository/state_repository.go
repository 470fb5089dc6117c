package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/jackc/pgx/v5"
)

type StateRepository interface {
	List(ctx context.Context) ([]models.State, error)
	ListByCategoryID(ctx context.Context, categoryID int64) ([]models.State, error)
	GetByID(ctx context.Context, id int64) (*models.State, error)
	Create(ctx context.Context, input *models.StateInput) (*models.State, error)
	Update(ctx context.Context, id int64, input *models.StateInput) (*models.State, error)
	Delete(ctx context.Context, id int64) error
}

var stateColumns = []string{
	"id", "name", "description", "image_url", "category_id", "sort_order", "created_at", "updated_at",
}

type stateRepository struct {
	db *PostgresDB
}

func NewStateRepository(db *PostgresDB) StateRepository {
	return &stateRepository{db: db}
}

func scanState(row pgx.Row) (*models.State, error) {
	var s models.State
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.ImageURL,
		&s.CategoryID,
		&s.SortOrder,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stateRepository) List(ctx context.Context) ([]models.State, error) {
	return r.list(ctx, nil)
}

func (r *stateRepository) ListByCategoryID(ctx context.Context, categoryID int64) ([]models.State, error) {
	return r.list(ctx, squirrel.Eq{"category_id": categoryID})
}

func (r *stateRepository) list(ctx context.Context, filter squirrel.Sqlizer) ([]models.State, error) {
	builder := psql.Select(stateColumns...).
		From("states").
		OrderBy("sort_order ASC", "id ASC")
	if filter != nil {
		builder = builder.Where(filter)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build states query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	defer rows.Close()

	states := make([]models.State, 0)
	for rows.Next() {
		s, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		states = append(states, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating states: %w", err)
	}

	return states, nil
}

func (r *stateRepository) GetByID(ctx context.Context, id int64) (*models.State, error) {
	query, args, err := psql.Select(stateColumns...).
		From("states").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build state query: %w", err)
	}

	s, err := scanState(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "state", id)
	}
	return s, nil
}

func (r *stateRepository) Create(ctx context.Context, input *models.StateInput) (*models.State, error) {
	query, args, err := psql.Insert("states").
		Columns("name", "description", "image_url", "category_id", "sort_order").
		Values(input.Name, input.Description, input.ImageURL, input.CategoryID, input.SortOrder).
		Suffix("RETURNING " + strings.Join(stateColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build state insert: %w", err)
	}

	s, err := scanState(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "state", input.Name)
	}
	return s, nil
}

func (r *stateRepository) Update(ctx context.Context, id int64, input *models.StateInput) (*models.State, error) {
	query, args, err := psql.Update("states").
		SetMap(map[string]any{
			"name":        input.Name,
			"description": input.Description,
			"image_url":   input.ImageURL,
			"category_id": input.CategoryID,
			"sort_order":  input.SortOrder,
			"updated_at":  squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(stateColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build state update: %w", err)
	}

	s, err := scanState(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "state", id)
	}
	return s, nil
}

func (r *stateRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "states", "state", id)
}
