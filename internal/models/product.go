package models

type ProductStatus string

const (
	ProductStatusActive ProductStatus = "active"
	ProductStatusHidden ProductStatus = "hidden"
)

type Product struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Brand        string        `json:"brand"`
	AffiliateURL string        `json:"affiliate_url"`
	ImageURL     string        `json:"image_url"`
	StateID      int64         `json:"state_id"`
	Description  string        `json:"description"`
	Status       ProductStatus `json:"status"`
}

// ProductWithState строка админской таблицы товаров
type ProductWithState struct {
	Product
	StateName string `json:"state_name"`
}

type ProductInput struct {
	Name         string        `json:"name" validate:"required,max=100"`
	Brand        string        `json:"brand"`
	AffiliateURL string        `json:"affiliate_url" validate:"required,url,affiliate"`
	ImageURL     string        `json:"image_url" validate:"omitempty,url"`
	StateID      int64         `json:"state_id" validate:"min=1"`
	Description  string        `json:"description"`
	Status       ProductStatus `json:"status" validate:"oneof=active hidden"`
}
