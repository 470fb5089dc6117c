package service

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/SergeiKhy/affiliate-storefront/internal/analytics"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"go.uber.org/zap"
)

const (
	sessionIDLength  = 13
	sessionIDCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NewSessionID генерирует идентификатор сессии страницы из 13 символов [a-z0-9]
func NewSessionID() string {
	result := make([]byte, sessionIDLength)
	limit := big.NewInt(int64(len(sessionIDCharset)))
	for i := range result {
		num, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand не возвращает ошибок на поддерживаемых платформах
			panic(err)
		}
		result[i] = sessionIDCharset[num.Int64()]
	}
	return string(result)
}

type ClickRequest struct {
	ProductID int64
	// StateID 0 означает состояние самого товара
	StateID   int64
	SessionID string
	UserAgent string
	Referer   string
}

type ClickResult struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
	StateID   int64  `json:"state_id"`
	ProductID int64  `json:"product_id"`
}

// ClickTracker путь перехода по партнёрской ссылке:
// событие аналитики, запись клика, возврат URL. Первые два шага не блокируют.
type ClickTracker interface {
	TrackClick(ctx context.Context, req ClickRequest) (*ClickResult, error)
}

type clickTracker struct {
	catalog    CatalogService
	dispatcher *analytics.Dispatcher
	uaParser   *analytics.UserAgentParser
	logger     *zap.Logger
}

func NewClickTracker(
	catalog CatalogService,
	dispatcher *analytics.Dispatcher,
	uaParser *analytics.UserAgentParser,
	logger *zap.Logger,
) ClickTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clickTracker{
		catalog:    catalog,
		dispatcher: dispatcher,
		uaParser:   uaParser,
		logger:     logger,
	}
}

func (t *clickTracker) TrackClick(ctx context.Context, req ClickRequest) (*ClickResult, error) {
	product, err := t.catalog.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	// Скрытый товар посетителю не показывается, переход по нему тоже
	if product.Status != models.ProductStatusActive {
		t.logger.Info("Переход по скрытому товару", zap.Int64("product_id", product.ID))
		return nil, ErrProductNotFound
	}

	stateID := req.StateID
	if stateID <= 0 {
		stateID = product.StateID
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	// Имя состояния нужно только для события, его отсутствие не мешает переходу
	var stateName string
	if state, err := t.catalog.GetStateByID(ctx, stateID); err == nil {
		stateName = state.Name
	}

	event := analytics.ClickAffiliate(stateName, product.Name, product.ID).WithSession(sessionID)
	if t.uaParser != nil && req.UserAgent != "" {
		event = event.WithParams(t.uaParser.Params(req.UserAgent))
	}
	if req.Referer != "" {
		event = event.WithParams(map[string]any{"referer": req.Referer})
	}
	t.dispatcher.Dispatch(ctx, event)

	t.catalog.LogClick(ctx, stateID, product.ID, sessionID)

	t.logger.Debug("Переход по партнёрской ссылке",
		zap.Int64("product_id", product.ID),
		zap.Int64("state_id", stateID),
		zap.String("session_id", sessionID),
	)

	return &ClickResult{
		URL:       product.AffiliateURL,
		SessionID: sessionID,
		StateID:   stateID,
		ProductID: product.ID,
	}, nil
}

// PageSession одна загрузка страницы предложений: все клики несут один session_id
type PageSession struct {
	id      string
	stateID int64
	tracker ClickTracker
}

func NewPageSession(tracker ClickTracker, stateID int64) *PageSession {
	return &PageSession{id: NewSessionID(), stateID: stateID, tracker: tracker}
}

func (s *PageSession) ID() string { return s.id }

// Activate фиксирует клик по товару и возвращает URL для открытия
func (s *PageSession) Activate(ctx context.Context, product models.Product, userAgent string) (string, error) {
	res, err := s.tracker.TrackClick(ctx, ClickRequest{
		ProductID: product.ID,
		StateID:   s.stateID,
		SessionID: s.id,
		UserAgent: userAgent,
	})
	if err != nil {
		return "", err
	}
	return res.URL, nil
}
