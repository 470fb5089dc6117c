package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	writeTimeout         = 5 * time.Second
)

var ErrProcessorStopped = errors.New("процессор кликов остановлен")

// ClickProcessor асинхронная запись кликов, одна попытка на клик
type ClickProcessor interface {
	Start()
	Stop()
	RecordClick(ctx context.Context, click *models.ClickLog) error
	GetChannelStats() ChannelStats
}

// clickProcessor реализация процессора кликов с использованием Worker Pool
type clickProcessor struct {
	clickRepo    repository.ClickRepository
	logger       *zap.Logger
	clickChannel chan *models.ClickLog
	workerCount  int
	wg           sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

// NewClickProcessor создаёт новый экземпляр процессора кликов
func NewClickProcessor(clickRepo repository.ClickRepository, logger *zap.Logger) ClickProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clickProcessor{
		clickRepo:    clickRepo,
		logger:       logger,
		clickChannel: make(chan *models.ClickLog, defaultChannelBuffer),
		workerCount:  defaultWorkerCount,
		done:         make(chan struct{}),
	}
}

// Start запускает worker pool
func (p *clickProcessor) Start() {
	p.logger.Info("Запуск воркеров процессора кликов", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop перестаёт принимать клики и дописывает то, что уже в буфере
func (p *clickProcessor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.done)
	p.mu.Unlock()

	p.logger.Info("Остановка процессора кликов...")
	p.wg.Wait()
	p.logger.Info("Процессор кликов остановлен")
}

func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Воркер кликов запущен", zap.Int("id", id))

	for {
		select {
		case <-p.done:
			p.drain()
			p.logger.Debug("Воркер кликов остановлен", zap.Int("id", id))
			return

		case click := <-p.clickChannel:
			p.processClick(click)
		}
	}
}

func (p *clickProcessor) drain() {
	for {
		select {
		case click := <-p.clickChannel:
			p.processClick(click)
		default:
			return
		}
	}
}

// processClick пишет клик один раз, без повторов
func (p *clickProcessor) processClick(click *models.ClickLog) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := p.clickRepo.RecordClick(ctx, click); err != nil {
		p.logger.Error("Не удалось записать клик",
			zap.String("click_id", click.ID),
			zap.Int64("state_id", click.StateID),
			zap.Int64("product_id", click.ProductID),
			zap.Error(err),
		)
	}
}

// RecordClick отправляет клик в worker pool (неблокирующая операция)
func (p *clickProcessor) RecordClick(ctx context.Context, click *models.ClickLog) error {
	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	if click.Timestamp.IsZero() {
		click.Timestamp = time.Now().UTC()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrProcessorStopped
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.clickChannel <- click:
		return nil
	default:
		// Канал заполнен, логируем предупреждение, но не блокируем запрос
		p.logger.Warn("Буфер канала кликов заполнен, событие потеряно",
			zap.Int64("product_id", click.ProductID),
		)
		return nil
	}
}

// GetChannelStats возвращает статистику канала для мониторинга
func (p *clickProcessor) GetChannelStats() ChannelStats {
	return ChannelStats{
		BufferSize:  cap(p.clickChannel),
		BufferUsed:  len(p.clickChannel),
		WorkerCount: p.workerCount,
	}
}

// ChannelStats статистика канала worker pool
type ChannelStats struct {
	BufferSize  int `json:"buffer_size"`
	BufferUsed  int `json:"buffer_used"`
	WorkerCount int `json:"worker_count"`
}
