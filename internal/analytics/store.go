package analytics

import (
	"context"
	"time"

	"github.com/kosarica/grooming-service/internal/signals"
	"github.com/kosarica/grooming-service/internal/types"
)

// Store is the data access the service depends on. Missing rows are reported
// as types.ErrNotFound.
type Store interface {
	Transactions(ctx context.Context, from, to time.Time) ([]types.Transaction, error)
	UnclassifiedTransactions(ctx context.Context, limit int) ([]types.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*types.Transaction, error)
	SetTransactionFlags(ctx context.Context, id string, isGrooming, isStore bool) error
	Appointments(ctx context.Context, from, to time.Time) ([]types.RawAppointment, error)
	Clients(ctx context.Context) ([]types.Client, error)
	Employees(ctx context.Context) ([]types.Employee, error)
	Products(ctx context.Context) ([]types.Product, error)
	GetProduct(ctx context.Context, id string) (*types.Product, error)
	UpdateProductCategory(ctx context.Context, id, category string) (*types.Product, error)
	ClassificationRules(ctx context.Context) ([]types.ClassificationRule, error)
	ReplaceRules(ctx context.Context, rules []types.ClassificationRule) error
}

// SignalCollector resolves external signals for a location
type SignalCollector interface {
	Collect(ctx context.Context, loc signals.Location) signals.Snapshot
}
