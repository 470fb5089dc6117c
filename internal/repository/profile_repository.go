package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

type profileRepository struct {
	db *PostgresDB
}

func NewProfileRepository(db *PostgresDB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query, args, err := psql.Select("user_id", "role", "created_at", "updated_at").
		From("profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}

	var p models.Profile
	err = r.db.Pool.QueryRow(ctx, query, args...).Scan(&p.UserID, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "profile", userID)
	}
	return &p, nil
}
