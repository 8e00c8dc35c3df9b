package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// Client manages an embedded DuckDB database.
type Client struct {
	db *sql.DB
}

// NewClient opens (or creates) a DuckDB database.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("duckdb open: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("duckdb ping: %w", err)
	}

	if cfg.MemoryLimit != "" {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("SET memory_limit='%s'", cfg.MemoryLimit)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("duckdb memory_limit: %w", err)
		}
	}
	if cfg.Threads > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("SET threads=%d", cfg.Threads)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("duckdb threads: %w", err)
		}
	}

	return &Client{db: db}, nil
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Health performs health check.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InitSchema ensures tables exist (idempotent).
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Attach attaches an external database file under the given alias. The alias
// must be a plain identifier; the path is quoted for the ATTACH literal.
func (c *Client) Attach(ctx context.Context, alias, path string, readOnly bool) error {
	if !validIdent(alias) {
		return fmt.Errorf("attach: invalid alias %q", alias)
	}
	stmt := fmt.Sprintf("ATTACH '%s' AS %s", escapeLiteral(path), alias)
	if readOnly {
		stmt += " (READ_ONLY)"
	}
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("attach %s: %w", path, err)
	}
	return nil
}

// Detach releases a previously attached database.
func (c *Client) Detach(ctx context.Context, alias string) error {
	if !validIdent(alias) {
		return fmt.Errorf("detach: invalid alias %q", alias)
	}
	if _, err := c.db.ExecContext(ctx, "DETACH "+alias); err != nil {
		return fmt.Errorf("detach %s: %w", alias, err)
	}
	return nil
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
