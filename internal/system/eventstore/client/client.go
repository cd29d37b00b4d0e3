/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package client

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/wso2/web-analytics-service/internal/system/config"
)

// EventStoreClientInterface is the read surface of the columnar event
// store. It mirrors the subset of driver.Conn the query services need so
// stores remain fakeable in tests.
type EventStoreClientInterface interface {
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row
	Ping(ctx context.Context) error
	Close() error
}

// EventStoreClient wraps a ClickHouse native connection.
type EventStoreClient struct {
	conn driver.Conn
}

// NewEventStoreClient opens a native connection to the event store.
func NewEventStoreClient(cfg config.EventStoreConfig) (*EventStoreClient, error) {

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Hostname, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event store: %w", err)
	}
	return &EventStoreClient{conn: conn}, nil
}

// NewEventStoreClientFromConn wraps an existing connection.
func NewEventStoreClientFromConn(conn driver.Conn) *EventStoreClient {

	return &EventStoreClient{conn: conn}
}

func (c *EventStoreClient) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {

	return c.conn.Select(ctx, dest, query, args...)
}

func (c *EventStoreClient) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {

	return c.conn.QueryRow(ctx, query, args...)
}

func (c *EventStoreClient) Ping(ctx context.Context) error {

	return c.conn.Ping(ctx)
}

func (c *EventStoreClient) Close() error {

	return c.conn.Close()
}
