package models

import (
	"time"
)

// State желаемое состояние («как хочу выглядеть»), по нему пользователь выбирает товары
type State struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CategoryID  *int64    `json:"category_id"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type StateInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	SortOrder   int    `json:"sort_order" validate:"min=0"`
}
