// Package analytics доставляет именованные события витрины во внешний приёмник.
// Доставка всегда в фоне: ошибки логируются и не влияют на запрос.
package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Имена событий
const (
	EventViewHome          = "view_home"
	EventSelectState       = "select_state"
	EventViewSuggestion    = "view_suggestion"
	EventClickAffiliate    = "click_affiliate"
	EventViewEffectList    = "view_effect_list"
	EventSelectCategoryTab = "select_category_tab"
	EventSelectEffect      = "select_effect"
)

type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	SessionID string         `json:"session_id,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewEvent(name string, params map[string]any) Event {
	if params == nil {
		params = map[string]any{}
	}
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Params:    params,
		Timestamp: time.Now().UTC(),
	}
}

// WithSession привязывает событие к сессии страницы
func (e Event) WithSession(sessionID string) Event {
	e.SessionID = sessionID
	return e
}

func ViewHome() Event {
	return NewEvent(EventViewHome, nil)
}

func SelectState(stateName string) Event {
	return NewEvent(EventSelectState, map[string]any{"state_name": stateName})
}

func ViewSuggestion(stateName string) Event {
	return NewEvent(EventViewSuggestion, map[string]any{"state_name": stateName})
}

func ClickAffiliate(stateName, productName string, productID int64) Event {
	return NewEvent(EventClickAffiliate, map[string]any{
		"state_name":   stateName,
		"product_name": productName,
		"product_id":   productID,
	})
}

func ViewEffectList(listType, categoryName string) Event {
	return NewEvent(EventViewEffectList, map[string]any{
		"list_type":     listType,
		"category_name": categoryName,
	})
}

func SelectCategoryTab(categoryName string, categoryOrder int) Event {
	return NewEvent(EventSelectCategoryTab, map[string]any{
		"category_name":  categoryName,
		"category_order": categoryOrder,
	})
}

// SelectEffect position считается с 1
func SelectEffect(stateID int64, stateName, listType, categoryName string, position int) Event {
	return NewEvent(EventSelectEffect, map[string]any{
		"state_id":      stateID,
		"state_name":    stateName,
		"list_type":     listType,
		"category_name": categoryName,
		"position":      position,
	})
}

// WithParams дополняет параметры события, уже заданные ключи не перезаписываются
func (e Event) WithParams(extra map[string]any) Event {
	params := make(map[string]any, len(e.Params)+len(extra))
	for k, v := range extra {
		params[k] = v
	}
	for k, v := range e.Params {
		params[k] = v
	}
	e.Params = params
	return e
}
