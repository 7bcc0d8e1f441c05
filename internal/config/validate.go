package config

import (
	"fmt"
	"strings"
)

// MaxDeleteChunkSize is the per-call key limit of the S3 DeleteObjects API.
const MaxDeleteChunkSize = 1000

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if err := c.Ingestion.validate(); err != nil {
		return fmt.Errorf("ingestion: %w", err)
	}

	return nil
}

func (i *IngestionConfig) validate() error {
	if strings.TrimSpace(i.Environment) == "" {
		return fmt.Errorf("environment must not be empty")
	}
	if i.TxTimeout <= 0 {
		return fmt.Errorf("tx_timeout must be > 0 (got %s)", i.TxTimeout)
	}
	if i.DeleteChunkSize < 1 || i.DeleteChunkSize > MaxDeleteChunkSize {
		return fmt.Errorf("delete_chunk_size must be in 1..%d (got %d)", MaxDeleteChunkSize, i.DeleteChunkSize)
	}
	return nil
}
