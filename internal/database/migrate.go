package database

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ChangeChannel is the NOTIFY channel the change triggers publish on
const ChangeChannel = "grooming_changes"

// EnsureSchema creates the tables and change triggers if they are missing.
// It is safe to run repeatedly.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
