package optimistic

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	ID       string
	Category string
}

func toggle(p product) product {
	if p.Category == "grooming" {
		p.Category = "store"
	} else {
		p.Category = "grooming"
	}
	return p
}

func TestUpdate_Confirmed(t *testing.T) {
	var seen []Transition[product]
	u := Begin(product{ID: "p1", Category: "store"}, toggle, func(tr Transition[product]) {
		seen = append(seen, tr)
	})

	assert.Equal(t, Pending, u.State())
	assert.Equal(t, "grooming", u.Value().Category)

	var written product
	v, err := u.Resolve(context.Background(),
		func(_ context.Context, p product) error { written = p; return nil },
		func(context.Context) (product, error) { t.Fatal("refetch must not run"); return product{}, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, "grooming", v.Category)
	assert.Equal(t, "grooming", written.Category)
	assert.Equal(t, Confirmed, u.State())

	require.Len(t, seen, 2)
	assert.Equal(t, Pending, seen[0].State)
	assert.Equal(t, Confirmed, seen[1].State)
	assert.Equal(t, u.ID(), seen[1].ID)
}

func TestUpdate_RollbackRefetches(t *testing.T) {
	var seen []Transition[product]
	u := Begin(product{ID: "p1", Category: "store"}, toggle, func(tr Transition[product]) {
		seen = append(seen, tr)
	})

	writeErr := errors.New("permission denied")
	v, err := u.Resolve(context.Background(),
		func(context.Context, product) error { return writeErr },
		func(context.Context) (product, error) { return product{ID: "p1", Category: "accessories"}, nil },
	)

	require.ErrorIs(t, err, writeErr)
	assert.Equal(t, "accessories", v.Category, "rollback uses the refetched value, not the old local one")
	assert.Equal(t, RolledBack, u.State())
	require.Len(t, seen, 2)
	assert.Equal(t, RolledBack, seen[1].State)
	assert.Equal(t, "permission denied", seen[1].Err)
}

func TestUpdate_RollbackWhenRefetchFails(t *testing.T) {
	u := Begin(product{ID: "p1", Category: "store"}, toggle, nil)

	writeErr := errors.New("write failed")
	fetchErr := errors.New("fetch failed")
	v, err := u.Resolve(context.Background(),
		func(context.Context, product) error { return writeErr },
		func(context.Context) (product, error) { return product{}, fetchErr },
	)

	require.ErrorIs(t, err, writeErr)
	require.ErrorIs(t, err, fetchErr)
	assert.Equal(t, "store", v.Category)
	assert.Equal(t, RolledBack, u.State())
}

func TestUpdate_TerminalStates(t *testing.T) {
	u := Begin(product{Category: "store"}, toggle, nil)
	_, err := u.Resolve(context.Background(),
		func(context.Context, product) error { return nil },
		func(context.Context) (product, error) { return product{}, nil },
	)
	require.NoError(t, err)

	v, err := u.Resolve(context.Background(),
		func(context.Context, product) error { t.Fatal("write must not run"); return nil },
		func(context.Context) (product, error) { return product{}, nil },
	)
	assert.ErrorIs(t, err, ErrTerminal)
	assert.Equal(t, "grooming", v.Category)
}

func TestUpdate_ResolveWhileWriting(t *testing.T) {
	u := Begin(product{Category: "store"}, toggle, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var writes atomic.Int32
	write := func(context.Context, product) error {
		writes.Add(1)
		close(started)
		<-release
		return nil
	}
	refetch := func(context.Context) (product, error) { return product{}, nil }

	first := make(chan error, 1)
	go func() {
		_, err := u.Resolve(context.Background(), write, refetch)
		first <- err
	}()
	<-started

	_, err := u.Resolve(context.Background(), write, refetch)
	assert.ErrorIs(t, err, ErrTerminal)
	assert.Equal(t, Pending, u.State())

	close(release)
	require.NoError(t, <-first)
	assert.Equal(t, int32(1), writes.Load())
	assert.Equal(t, Confirmed, u.State())
}

func TestUpdate_ConcurrentResolveWritesOnce(t *testing.T) {
	u := Begin(product{Category: "store"}, toggle, nil)

	var writes atomic.Int32
	write := func(context.Context, product) error {
		writes.Add(1)
		return nil
	}
	refetch := func(context.Context) (product, error) { return product{}, nil }

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = u.Resolve(context.Background(), write, refetch)
		}(i)
	}
	wg.Wait()

	var ok, terminal int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrTerminal):
			terminal++
		}
	}
	assert.Equal(t, int32(1), writes.Load())
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, terminal)
}
