package duckdb

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds DuckDB configuration.
type ClientConfig struct {
	Path         string
	MemoryLimit  string
	Threads      int
	MaxOpenConns int
	MaxIdleConns int
}

// WithPath sets the database file path. Empty means in-memory.
func WithPath(path string) ClientOption {
	return func(c *ClientConfig) {
		c.Path = path
	}
}

// WithMemoryLimit sets the DuckDB memory limit (e.g. "2GB").
func WithMemoryLimit(limit string) ClientOption {
	return func(c *ClientConfig) {
		c.MemoryLimit = limit
	}
}

// WithThreads sets the DuckDB worker thread count.
func WithThreads(n int) ClientOption {
	return func(c *ClientConfig) {
		c.Threads = n
	}
}

// WithMaxConnections sets max open and idle connections on the pool.
func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(c *ClientConfig) {
		c.MaxOpenConns = maxOpen
		c.MaxIdleConns = maxIdle
	}
}
