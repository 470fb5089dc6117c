package models

import (
	"time"
)

// ClickLog неизменяемая запись о переходе по партнёрской ссылке
type ClickLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	StateID   int64     `json:"state_id"`
	ProductID int64     `json:"product_id"`
	SessionID string    `json:"session_id"`
}

type ClickDimension string

const (
	ClickDimensionState   ClickDimension = "state"
	ClickDimensionProduct ClickDimension = "product"
)

// ClickAggregate количество кликов по одному значению измерения
type ClickAggregate struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
	Count int64  `json:"count"`
}

type DailyClickStats struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

type AnalyticsReport struct {
	Days          int               `json:"days"`
	Since         time.Time         `json:"since"`
	TotalClicks   int64             `json:"total_clicks"`
	StateClicks   []ClickAggregate  `json:"state_clicks"`
	ProductClicks []ClickAggregate  `json:"product_clicks"`
	Daily         []DailyClickStats `json:"daily"`
}
