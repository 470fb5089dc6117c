package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/SergeiKhy/affiliate-storefront/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// psql построитель запросов с плейсхолдерами $1, $2...
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type PostgresDB struct {
	Pool *pgxpool.Pool
}

// DSN собирает строку подключения, её же использует goose
func DSN(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

func NewPostgresDB(ctx context.Context, dsn string) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	// Витрина в основном читает, пул держим небольшим
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

func (db *PostgresDB) Close() {
	db.Pool.Close()
}

// Repositories набор репозиториев одного источника данных
type Repositories struct {
	Categories CategoryRepository
	States     StateRepository
	Products   ProductRepository
	Clicks     ClickRepository
	Profiles   ProfileRepository
	// Fixture выставлен, когда данные демонстрационные и запись недоступна
	Fixture bool
}

func NewRepositories(db *PostgresDB) *Repositories {
	return &Repositories{
		Categories: NewCategoryRepository(db),
		States:     NewStateRepository(db),
		Products:   NewProductRepository(db),
		Clicks:     NewClickRepository(db),
		Profiles:   NewProfileRepository(db),
	}
}
