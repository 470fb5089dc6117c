package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	// ListActiveByStateID возвращает только товары со статусом active
	ListActiveByStateID(ctx context.Context, stateID int64) ([]models.Product, error)
	// ListAll возвращает товары всех статусов вместе с названием состояния
	ListAll(ctx context.Context) ([]models.ProductWithState, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, input *models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

var productColumns = []string{
	"id", "name", "brand", "affiliate_url", "image_url", "state_id", "description", "status",
}

type productRepository struct {
	db *PostgresDB
}

func NewProductRepository(db *PostgresDB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row pgx.Row, extra ...any) (*models.Product, error) {
	var (
		p      models.Product
		status string
	)
	dest := []any{
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.AffiliateURL,
		&p.ImageURL,
		&p.StateID,
		&p.Description,
		&status,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.Status = models.ProductStatus(status)
	return &p, nil
}

func qualified(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

func (r *productRepository) ListActiveByStateID(ctx context.Context, stateID int64) ([]models.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"state_id": stateID, "status": string(models.ProductStatusActive)}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build products query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) ListAll(ctx context.Context) ([]models.ProductWithState, error) {
	columns := append(qualified("p", productColumns), "COALESCE(s.name, '')")
	query, args, err := psql.Select(columns...).
		From("products p").
		LeftJoin("states s ON s.id = p.state_id").
		OrderBy("p.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build products query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]models.ProductWithState, 0)
	for rows.Next() {
		var stateName string
		p, err := scanProduct(rows, &stateName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, models.ProductWithState{Product: *p, StateName: stateName})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build product query: %w", err)
	}

	p, err := scanProduct(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "product", id)
	}
	return p, nil
}

func (r *productRepository) Create(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	query, args, err := psql.Insert("products").
		Columns("name", "brand", "affiliate_url", "image_url", "state_id", "description", "status").
		Values(
			input.Name,
			input.Brand,
			input.AffiliateURL,
			input.ImageURL,
			input.StateID,
			input.Description,
			string(input.Status),
		).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build product insert: %w", err)
	}

	p, err := scanProduct(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "product", input.Name)
	}
	return p, nil
}

func (r *productRepository) Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error) {
	query, args, err := psql.Update("products").
		SetMap(map[string]any{
			"name":          input.Name,
			"brand":         input.Brand,
			"affiliate_url": input.AffiliateURL,
			"image_url":     input.ImageURL,
			"state_id":      input.StateID,
			"description":   input.Description,
			"status":        string(input.Status),
			"updated_at":    squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build product update: %w", err)
	}

	p, err := scanProduct(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "product", id)
	}
	return p, nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "products", "product", id)
}
