package milvus

import (
	"context"
	"errors"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
)

// Config holds connection parameters for Milvus.
type Config struct {
	Address  string
	Username string
	Password string
	DBName   string
}

// NewClient connects to Milvus. An empty DBName selects the default database.
func NewClient(ctx context.Context, cfg Config) (client.Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("address is required")
	}
	dbName := cfg.DBName
	if dbName == "" {
		dbName = "default"
	}
	cli, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   dbName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return cli, nil
}
