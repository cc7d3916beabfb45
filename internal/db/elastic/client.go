package elastic

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/teamaeris/opendata-api/internal/db"
)

// Compile-time check: Client implements db.Pinger.
var _ db.Pinger = (*Client)(nil)

// Config holds connection parameters for Elasticsearch.
type Config struct {
	Addresses []string
	Username  string
	Password  string
}

// Client wraps the Elasticsearch client with readiness helpers.
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates an Elasticsearch client.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("addresses is required")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Client{es: es}, nil
}

// ES returns the underlying client.
func (c *Client) ES() *elasticsearch.Client {
	return c.es
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer Drain(res.Body)
	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("status %s", res.Status())}
	}
	return nil
}

// Drain consumes and closes a response body so the connection can be reused.
func Drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
