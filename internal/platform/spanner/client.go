// Package spanner provides Cloud Spanner client initialization and
// transaction plumbing.
package spanner

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
)

// Config holds Spanner connection configuration.
type Config struct {
	ProjectID  string
	InstanceID string
	DatabaseID string
}

// DSN returns the Spanner database connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s",
		c.ProjectID, c.InstanceID, c.DatabaseID)
}

func (c Config) validate() error {
	if c.ProjectID == "" || c.InstanceID == "" || c.DatabaseID == "" {
		return errors.New("spanner project, instance and database ids are required")
	}
	return nil
}

// NewClient creates a new Spanner client from config. SPANNER_EMULATOR_HOST
// is honored by the client library itself.
// The caller is responsible for closing the client when done.
func NewClient(ctx context.Context, cfg Config) (*spanner.Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client, err := spanner.NewClient(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create spanner client: %w", err)
	}
	return client, nil
}

// Ping runs a trivial query to confirm the database is reachable.
func Ping(ctx context.Context, client *spanner.Client) error {
	iter := client.Single().Query(ctx, spanner.Statement{SQL: "SELECT 1"})
	defer iter.Stop()
	if _, err := iter.Next(); err != nil {
		return fmt.Errorf("spanner ping: %w", err)
	}
	return nil
}
