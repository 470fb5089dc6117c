package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/SergeiKhy/affiliate-storefront/internal/config"
)

const createEventsTableSQL = `
CREATE TABLE IF NOT EXISTS storefront_events (
    event_id   String,
    event_name LowCardinality(String),
    session_id String,
    params     String,
    timestamp  DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (event_name, timestamp)`

// ClickHouseSink пишет события пачками в таблицу storefront_events
type ClickHouseSink struct {
	conn clickhouse.Conn
}

func NewClickHouseSink(ctx context.Context, cfg config.ClickHouseConfig) (*ClickHouseSink, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("CLICKHOUSE_HOST is not set")
	}
	port := cfg.Port
	if port == "" {
		port = "9000"
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%s", cfg.Host, port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "affiliate-storefront", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := conn.Ping(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := conn.Exec(pingCtx, createEventsTableSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	return &ClickHouseSink{conn: conn}, nil
}

func (s *ClickHouseSink) Send(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO storefront_events (event_id, event_name, session_id, params, timestamp)`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		params, err := json.Marshal(event.Params)
		if err != nil {
			return fmt.Errorf("failed to encode event params: %w", err)
		}
		if err := batch.Append(event.ID, event.Name, event.SessionID, string(params), event.Timestamp); err != nil {
			return fmt.Errorf("failed to append event %s: %w", event.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}
