package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultSendTimeout = 3 * time.Second

// Sink внешний приёмник событий
type Sink interface {
	Send(ctx context.Context, events ...Event) error
	Close() error
}

// NopSink выбрасывает события, используется когда драйвер не задан
type NopSink struct{}

func (NopSink) Send(ctx context.Context, events ...Event) error { return nil }
func (NopSink) Close() error                                    { return nil }

// Dispatcher отправляет события в фоне, не блокируя вызывающего
type Dispatcher struct {
	sink    Sink
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sink Sink, logger *zap.Logger) *Dispatcher {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sink:    sink,
		logger:  logger,
		timeout: defaultSendTimeout,
	}
}

// Dispatch запускает доставку и сразу возвращается.
// Отмена ctx запроса доставку не прерывает.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	if d == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Паника при отправке события", zap.String("event", event.Name), zap.Any("panic", r))
			}
		}()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.sink.Send(sendCtx, event); err != nil {
			d.logger.Warn("Не удалось отправить событие аналитики",
				zap.String("event", event.Name),
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
		}
	}()
}

// Wait ждёт завершения уже запущенных отправок
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close дожидается отправок и закрывает приёмник
func (d *Dispatcher) Close() error {
	d.wg.Wait()
	return d.sink.Close()
}
