package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kosarica/grooming-service/internal/types"
)

// ImportStats counts the rows written by Import
type ImportStats struct {
	Clients      int `json:"clients"`
	Employees    int `json:"employees"`
	Products     int `json:"products"`
	Transactions int `json:"transactions"`
}

// Import upserts a dataset in a single transaction. Classification rules are
// left alone; use ReplaceRules for those. Appointments belong to the booking
// system and are skipped.
func (s *Store) Import(ctx context.Context, ds types.Dataset) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range ds.Clients {
		batch.Queue(`
			INSERT INTO clients (id, name, phone, email) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone, email = EXCLUDED.email
		`, c.ID, c.Name, c.Phone, c.Email)
		stats.Clients++
	}
	for _, e := range ds.Employees {
		batch.Queue(`
			INSERT INTO employees (id, name, active) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active
		`, e.ID, e.Name, e.Active)
		stats.Employees++
	}
	for _, p := range ds.Products {
		batch.Queue(`
			INSERT INTO products (id, name, category, price, stock, min_stock) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				price = EXCLUDED.price,
				stock = EXCLUDED.stock,
				min_stock = EXCLUDED.min_stock,
				updated_at = now()
		`, p.ID, p.Name, p.Category, p.Price, p.Stock, p.MinStock)
		stats.Products++
	}
	for _, t := range ds.Transactions {
		items, err := json.Marshal(t.Items)
		if err != nil {
			return stats, fmt.Errorf("failed to encode items of transaction %s: %w", t.ID, err)
		}
		var createdAt any
		if t.HasValidDate() {
			createdAt = t.CreatedAt
		}
		batch.Queue(`
			INSERT INTO transactions (id, client_id, created_at, total_amount, tax_amount, payment_method, items, is_grooming, is_store)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				client_id = EXCLUDED.client_id,
				created_at = EXCLUDED.created_at,
				total_amount = EXCLUDED.total_amount,
				tax_amount = EXCLUDED.tax_amount,
				payment_method = EXCLUDED.payment_method,
				items = EXCLUDED.items
		`, t.ID, t.ClientID, createdAt, t.TotalAmount, t.TaxAmount, t.PaymentMethod, string(items), t.IsGrooming, t.IsStore)
		stats.Transactions++
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return ImportStats{}, fmt.Errorf("failed to import row %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return ImportStats{}, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ImportStats{}, fmt.Errorf("failed to commit import: %w", err)
	}
	return stats, nil
}
