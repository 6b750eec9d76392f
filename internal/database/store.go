package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kosarica/grooming-service/internal/types"
)

// Store reads and writes the business data the analytics service needs
type Store struct {
	db *DB
}

// NewStore creates a store on top of db
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

const transactionColumns = `
	id, client_id, created_at, total_amount::float8, tax_amount::float8,
	payment_method, items, is_grooming, is_store
`

func scanTransaction(row pgx.Row) (types.Transaction, error) {
	var (
		tx        types.Transaction
		createdAt *time.Time
		items     []byte
	)
	if err := row.Scan(
		&tx.ID, &tx.ClientID, &createdAt, &tx.TotalAmount, &tx.TaxAmount,
		&tx.PaymentMethod, &items, &tx.IsGrooming, &tx.IsStore,
	); err != nil {
		return tx, err
	}
	if createdAt != nil {
		tx.CreatedAt = *createdAt
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &tx.Items); err != nil {
			return tx, fmt.Errorf("transaction %s has malformed items: %w", tx.ID, err)
		}
	}
	return tx, nil
}

func collectTransactions(rows pgx.Rows) ([]types.Transaction, error) {
	defer rows.Close()
	var out []types.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// Transactions returns transactions created in [from, to), oldest first
func (s *Store) Transactions(ctx context.Context, from, to time.Time) ([]types.Transaction, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	txs, err := collectTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txs, nil
}

// UnclassifiedTransactions returns up to limit transactions that have never
// been classified
func (s *Store) UnclassifiedTransactions(ctx context.Context, limit int) ([]types.Transaction, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE classified_at IS NULL
		ORDER BY created_at NULLS LAST, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unclassified transactions: %w", err)
	}
	txs, err := collectTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txs, nil
}

// GetTransaction returns one transaction or types.ErrNotFound
func (s *Store) GetTransaction(ctx context.Context, id string) (*types.Transaction, error) {
	row := s.db.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return &tx, nil
}

// SetTransactionFlags persists the revenue line flags of a transaction
func (s *Store) SetTransactionFlags(ctx context.Context, id string, isGrooming, isStore bool) error {
	tag, err := s.db.pool.Exec(ctx, `
		UPDATE transactions
		SET is_grooming = $2, is_store = $3, classified_at = now()
		WHERE id = $1
	`, id, isGrooming, isStore)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Appointments returns appointments starting in [from, to) in their raw
// shape, with the pet, client and service joined as JSON objects
func (s *Store) Appointments(ctx context.Context, from, to time.Time) ([]types.RawAppointment, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT
			a.id,
			to_char(a.start_time AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'),
			to_char(a.end_time AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'),
			a.status,
			a.notes,
			a.employee_id,
			CASE WHEN p.id IS NULL THEN NULL ELSE jsonb_build_object('name', p.name) END,
			CASE WHEN c.id IS NULL THEN NULL ELSE jsonb_build_object('full_name', c.name) END,
			CASE WHEN sv.id IS NULL THEN NULL ELSE jsonb_build_object('name', sv.name, 'category', sv.category) END
		FROM appointments a
		LEFT JOIN pets p ON p.id = a.pet_id
		LEFT JOIN clients c ON c.id = a.client_id
		LEFT JOIN services sv ON sv.id = a.service_id
		WHERE a.start_time >= $1 AND a.start_time < $2
		ORDER BY a.start_time, a.id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var out []types.RawAppointment
	for rows.Next() {
		var (
			a                    types.RawAppointment
			pet, client, service []byte
		)
		if err := rows.Scan(&a.ID, &a.StartTime, &a.EndTime, &a.Status, &a.Notes, &a.EmployeeID,
			&pet, &client, &service); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		a.Pet = pet
		a.Client = client
		a.Service = service
		out = append(out, a)
	}
	return out, rows.Err()
}

// Clients returns the client roster ordered by name
func (s *Store) Clients(ctx context.Context) ([]types.Client, error) {
	rows, err := s.db.pool.Query(ctx, `SELECT id, name, phone, email FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var out []types.Client
	for rows.Next() {
		var c types.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Employees returns every employee ordered by name
func (s *Store) Employees(ctx context.Context) ([]types.Employee, error) {
	rows, err := s.db.pool.Query(ctx, `SELECT id, name, active FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []types.Employee
	for rows.Next() {
		var e types.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Active); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const productColumns = `id, name, category, price::float8, stock, min_stock`

func scanProduct(row pgx.Row) (types.Product, error) {
	var p types.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.MinStock)
	return p, err
}

// Products returns the catalog ordered by name
func (s *Store) Products(ctx context.Context) ([]types.Product, error) {
	rows, err := s.db.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []types.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct returns one product or types.ErrNotFound
func (s *Store) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	p, err := scanProduct(s.db.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &p, nil
}

// UpdateProductCategory sets the category and returns the stored product
func (s *Store) UpdateProductCategory(ctx context.Context, id, category string) (*types.Product, error) {
	p, err := scanProduct(s.db.pool.QueryRow(ctx, `
		UPDATE products SET category = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns, id, category))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return &p, nil
}

// ClassificationRules returns the rules in evaluation order
func (s *Store) ClassificationRules(ctx context.Context) ([]types.ClassificationRule, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, keyword, match_type, target, position
		FROM classification_rules
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query classification rules: %w", err)
	}
	defer rows.Close()

	var out []types.ClassificationRule
	for rows.Next() {
		var r types.ClassificationRule
		if err := rows.Scan(&r.ID, &r.Keyword, &r.MatchType, &r.Target, &r.Position); err != nil {
			return nil, fmt.Errorf("failed to scan classification rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceRules swaps the whole rule set in one transaction. Rules without an
// ID get a new one.
func (s *Store) ReplaceRules(ctx context.Context, rules []types.ClassificationRule) error {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM classification_rules`); err != nil {
		return fmt.Errorf("failed to clear classification rules: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range rules {
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		batch.Queue(`
			INSERT INTO classification_rules (id, keyword, match_type, target, position)
			VALUES ($1, $2, $3, $4, $5)
		`, id, r.Keyword, string(r.MatchType), string(r.Target), r.Position)
	}

	results := tx.SendBatch(ctx, batch)
	for range rules {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert classification rule: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit classification rules: %w", err)
	}
	return nil
}
