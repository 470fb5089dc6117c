package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingSink запоминает отправленные события
type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	ctxErr error
}

func (s *recordingSink) Send(ctx context.Context, events ...Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	s.ctxErr = ctx.Err()
	return s.err
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestClickAffiliate_Params(t *testing.T) {
	event := ClickAffiliate("清潔感を出したい", "化粧水", 2)

	assert.Equal(t, EventClickAffiliate, event.Name)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "清潔感を出したい", event.Params["state_name"])
	assert.Equal(t, "化粧水", event.Params["product_name"])
	assert.Equal(t, int64(2), event.Params["product_id"])
}

func TestSelectEffect_Params(t *testing.T) {
	event := SelectEffect(3, "青ヒゲを目立たなくしたい", "category", "ヒゲ・毛穴ケア", 1)

	assert.Equal(t, EventSelectEffect, event.Name)
	assert.Equal(t, 1, event.Params["position"])
	assert.Equal(t, "category", event.Params["list_type"])
}

// TestEvent_WithParams проверяет, что исходные параметры не перезаписываются
func TestEvent_WithParams(t *testing.T) {
	event := ViewSuggestion("肌を明るくしたい").WithParams(map[string]any{
		"state_name": "другое",
		"browser":    "Chrome",
	})

	assert.Equal(t, "肌を明るくしたい", event.Params["state_name"])
	assert.Equal(t, "Chrome", event.Params["browser"])
}

// TestDispatcher_Dispatch проверяет доставку события в приёмник
func TestDispatcher_Dispatch(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, zap.NewNop())

	d.Dispatch(context.Background(), ViewHome().WithSession("abc"))
	d.Wait()

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventViewHome, events[0].Name)
	assert.Equal(t, "abc", events[0].SessionID)
}

// TestDispatcher_CanceledRequest проверяет, что отмена запроса не отменяет отправку
func TestDispatcher_CanceledRequest(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Dispatch(ctx, ViewHome())
	d.Wait()

	require.Len(t, sink.Events(), 1)
	assert.NoError(t, sink.ctxErr)
}

// TestDispatcher_SinkError проверяет, что ошибка приёмника не всплывает
func TestDispatcher_SinkError(t *testing.T) {
	sink := &recordingSink{err: errors.New("sink down")}
	d := NewDispatcher(sink, zap.NewNop())

	start := time.Now()
	d.Dispatch(context.Background(), ViewHome())
	assert.Less(t, time.Since(start), time.Second)

	d.Wait()
	assert.Len(t, sink.Events(), 1)
	assert.NoError(t, d.Close())
}

func TestDispatcher_NilSafe(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), ViewHome())
	})

	nop := NewDispatcher(nil, nil)
	nop.Dispatch(context.Background(), ViewHome())
	assert.NoError(t, nop.Close())
}

func TestUserAgentParser_Params(t *testing.T) {
	parser := NewUserAgentParser()

	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{
			name:      "десктоп",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want:      DeviceDesktop,
		},
		{
			name:      "iPhone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want:      DeviceMobile,
		},
		{
			name:      "бот",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			want:      DeviceBot,
		},
		{
			name:      "пустой",
			userAgent: "",
			want:      DeviceUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := parser.Params(tt.userAgent)
			assert.Equal(t, tt.want, params["device_type"])
		})
	}
}
