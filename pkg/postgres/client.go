// Package postgres opens the lib/pq connection pool used by the analytics
// snapshot store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
	_ "github.com/lib/pq"
)

var connectRetry = resilience.Policy{
	Attempts:     5,
	InitialDelay: time.Second,
	MaxDelay:     10 * time.Second,
	Jitter:       0.1,
}

// Client owns the pool. DB is handed to stores that take a narrower
// interface.
type Client struct {
	DB *sql.DB
}

// New opens the pool and waits for the server so the service can start
// alongside its database.
func New(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	err = resilience.Do(ctx, "postgres connect", connectRetry, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("postgres connected", "host", cfg.Host, "database", cfg.Database)
	return &Client{DB: db}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.DB.Close()
}
