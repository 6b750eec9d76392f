package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kosarica/grooming-service/internal/types"
)

// MemoryStore is a Store over an in-memory dataset. The CLI uses it to
// analyze an exported snapshot without a database.
type MemoryStore struct {
	mu         sync.RWMutex
	data       types.Dataset
	classified map[string]bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore copies ds into a new store
func NewMemoryStore(ds types.Dataset) *MemoryStore {
	m := &MemoryStore{classified: make(map[string]bool)}
	m.data.Transactions = append([]types.Transaction(nil), ds.Transactions...)
	m.data.Clients = append([]types.Client(nil), ds.Clients...)
	m.data.Employees = append([]types.Employee(nil), ds.Employees...)
	m.data.Products = append([]types.Product(nil), ds.Products...)
	m.data.Rules = append([]types.ClassificationRule(nil), ds.Rules...)
	m.data.Appointments = append([]types.RawAppointment(nil), ds.Appointments...)
	return m
}

func (m *MemoryStore) Transactions(_ context.Context, from, to time.Time) ([]types.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.Transaction
	for _, tx := range m.data.Transactions {
		if !tx.HasValidDate() || tx.CreatedAt.Before(from) || !tx.CreatedAt.Before(to) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) UnclassifiedTransactions(_ context.Context, limit int) ([]types.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.Transaction
	for _, tx := range m.data.Transactions {
		if m.classified[tx.ID] {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *MemoryStore) GetTransaction(_ context.Context, id string) (*types.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.data.Transactions {
		if m.data.Transactions[i].ID == id {
			tx := m.data.Transactions[i]
			return &tx, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *MemoryStore) SetTransactionFlags(_ context.Context, id string, isGrooming, isStore bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.data.Transactions {
		if m.data.Transactions[i].ID == id {
			m.data.Transactions[i].IsGrooming = isGrooming
			m.data.Transactions[i].IsStore = isStore
			m.classified[id] = true
			return nil
		}
	}
	return types.ErrNotFound
}

// Appointments filters on the raw start string; rows whose start cannot be
// parsed are returned so normalization can report them.
func (m *MemoryStore) Appointments(_ context.Context, from, to time.Time) ([]types.RawAppointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.RawAppointment
	for _, a := range m.data.Appointments {
		start, err := time.Parse(time.RFC3339, a.StartTime)
		if err == nil && (start.Before(from) || !start.Before(to)) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *MemoryStore) Clients(context.Context) ([]types.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Client(nil), m.data.Clients...), nil
}

func (m *MemoryStore) Employees(context.Context) ([]types.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Employee(nil), m.data.Employees...), nil
}

func (m *MemoryStore) Products(context.Context) ([]types.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Product(nil), m.data.Products...), nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id string) (*types.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.data.Products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *MemoryStore) UpdateProductCategory(_ context.Context, id, category string) (*types.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.data.Products {
		if m.data.Products[i].ID == id {
			m.data.Products[i].Category = category
			p := m.data.Products[i]
			return &p, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *MemoryStore) ClassificationRules(context.Context) ([]types.ClassificationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]types.ClassificationRule(nil), m.data.Rules...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *MemoryStore) ReplaceRules(_ context.Context, rules []types.ClassificationRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.ClassificationRule, len(rules))
	copy(out, rules)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	m.data.Rules = out
	return nil
}
