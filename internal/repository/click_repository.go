package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
)

type ClickRepository interface {
	RecordClick(ctx context.Context, click *models.ClickLog) error
	// AggregateClicks считает клики по измерению на стороне БД
	AggregateClicks(ctx context.Context, dimension models.ClickDimension, since time.Time) ([]models.ClickAggregate, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	GetDailyStats(ctx context.Context, since time.Time) ([]models.DailyClickStats, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) RecordClick(ctx context.Context, click *models.ClickLog) error {
	query, args, err := psql.Insert("click_logs").
		Columns("id", `"timestamp"`, "state_id", "product_id", "session_id").
		Values(click.ID, click.Timestamp, click.StateID, click.ProductID, click.SessionID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build click insert: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

func (r *clickRepository) AggregateClicks(ctx context.Context, dimension models.ClickDimension, since time.Time) ([]models.ClickAggregate, error) {
	var builder squirrel.SelectBuilder
	switch dimension {
	case models.ClickDimensionState:
		builder = psql.Select("c.state_id", "COALESCE(s.name, '')", "''", "COUNT(*) AS clicks").
			From("click_logs c").
			LeftJoin("states s ON s.id = c.state_id").
			GroupBy("c.state_id", "s.name").
			OrderBy("clicks DESC", "c.state_id ASC")
	case models.ClickDimensionProduct:
		builder = psql.Select("c.product_id", "COALESCE(p.name, '')", "COALESCE(p.brand, '')", "COUNT(*) AS clicks").
			From("click_logs c").
			LeftJoin("products p ON p.id = c.product_id").
			GroupBy("c.product_id", "p.name", "p.brand").
			OrderBy("clicks DESC", "c.product_id ASC")
	default:
		return nil, fmt.Errorf("unknown click dimension %q: %w", dimension, ErrInvalidInput)
	}

	query, args, err := builder.Where(squirrel.GtOrEq{"c.timestamp": since}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build click aggregate query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate clicks: %w", err)
	}
	defer rows.Close()

	aggregates := make([]models.ClickAggregate, 0)
	for rows.Next() {
		var a models.ClickAggregate
		if err := rows.Scan(&a.ID, &a.Name, &a.Brand, &a.Count); err != nil {
			return nil, fmt.Errorf("failed to scan click aggregate: %w", err)
		}
		aggregates = append(aggregates, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating click aggregates: %w", err)
	}

	return aggregates, nil
}

func (r *clickRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("click_logs c").
		Where(squirrel.GtOrEq{"c.timestamp": since}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build click count query: %w", err)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return total, nil
}

func (r *clickRepository) GetDailyStats(ctx context.Context, since time.Time) ([]models.DailyClickStats, error) {
	query, args, err := psql.Select(`to_char(date_trunc('day', c.timestamp), 'YYYY-MM-DD') AS day`, "COUNT(*)").
		From("click_logs c").
		Where(squirrel.GtOrEq{"c.timestamp": since}).
		GroupBy("day").
		OrderBy("day ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build daily stats query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.DailyClickStats, 0)
	for rows.Next() {
		var dailyStat models.DailyClickStats
		if err := rows.Scan(&dailyStat.Date, &dailyStat.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats = append(stats, dailyStat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily stats: %w", err)
	}

	return stats, nil
}
