package migrations

import (
	"context"
	"fmt"
	"strings"

	"sim-dashboard/internal/storage/postgres"
)

// RunPostgres applies all embedded PostgreSQL migrations in lexical order.
// Migrations are idempotent.
func RunPostgres(ctx context.Context, pool *postgres.Pool) error {
	names, contents, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, name := range names {
		if strings.TrimSpace(contents[name]) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, contents[name]); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
