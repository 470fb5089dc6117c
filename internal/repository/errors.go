package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("запись не найдена")
	ErrStoreNotConfigured = errors.New("хранилище не настроено")
	ErrConflict           = errors.New("запись уже существует")
	ErrInvalidReference   = errors.New("нарушена ссылочная целостность")
	ErrInvalidInput       = errors.New("некорректные данные")
)

// mapError переводит ошибки pgx/pgconn в ошибки репозитория.
// Ошибки контекста не маппятся.
func mapError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %v: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %v: %w", entity, id, ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %v: %w", entity, id, ErrInvalidReference)
		case "23514", "22001": // check_violation, string_data_right_truncation
			return fmt.Errorf("%s %v: %w", entity, id, ErrInvalidInput)
		}
	}

	return fmt.Errorf("%s %v: %w", entity, id, err)
}
