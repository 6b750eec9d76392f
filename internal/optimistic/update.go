// Package optimistic models a locally applied change awaiting confirmation
// from the authoritative store.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// State of an optimistic update
type State string

const (
	Pending    State = "pending"
	Confirmed  State = "confirmed"
	RolledBack State = "rolled_back"
)

// ErrTerminal is returned when resolving an update that already settled
var ErrTerminal = errors.New("optimistic update already resolved")

// Transition is reported to observers on every state change
type Transition[T any] struct {
	ID    string `json:"id"`
	State State  `json:"state"`
	Value T      `json:"value"`
	Err   string `json:"error,omitempty"`
}

// Observer receives transitions. It runs synchronously on the resolving
// goroutine.
type Observer[T any] func(Transition[T])

// Update holds the optimistic value until the write is confirmed. A failed
// write rolls back to a freshly fetched authoritative value, not to the value
// held before the change.
type Update[T any] struct {
	mu    sync.Mutex
	id    string
	state State
	// resolving is set by the first Resolve; the state stays Pending until
	// the write settles
	resolving bool
	previous  T
	value     T
	observer  Observer[T]
}

// Begin applies mutate to current and returns the pending update. The
// observer, when not nil, is told about the pending state immediately.
func Begin[T any](current T, mutate func(T) T, observer Observer[T]) *Update[T] {
	u := &Update[T]{
		id:       uuid.NewString(),
		state:    Pending,
		previous: current,
		value:    mutate(current),
		observer: observer,
	}
	u.notify(nil)
	return u
}

// ID identifies the update across transitions
func (u *Update[T]) ID() string { return u.id }

// State returns the current state
func (u *Update[T]) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Value returns the optimistic value while pending, the confirmed value after
// success, or the refetched value after a rollback.
func (u *Update[T]) Value() T {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.value
}

// Resolve persists the optimistic value with write. On success the update is
// confirmed. On failure refetch supplies the authoritative value and the
// update rolls back; the write error is returned, joined with any refetch
// error. If refetch also fails the value falls back to the one held before
// Begin. Only the first call writes; later and concurrent calls get
// ErrTerminal.
func (u *Update[T]) Resolve(ctx context.Context, write func(context.Context, T) error, refetch func(context.Context) (T, error)) (T, error) {
	u.mu.Lock()
	if u.state != Pending || u.resolving {
		v := u.value
		u.mu.Unlock()
		return v, ErrTerminal
	}
	u.resolving = true
	pending := u.value
	u.mu.Unlock()

	writeErr := write(ctx, pending)
	if writeErr == nil {
		u.settle(Confirmed, pending, nil)
		return pending, nil
	}

	authoritative, fetchErr := refetch(ctx)
	if fetchErr != nil {
		u.mu.Lock()
		authoritative = u.previous
		u.mu.Unlock()
		writeErr = errors.Join(writeErr, fmt.Errorf("refetch after failed write: %w", fetchErr))
	}
	u.settle(RolledBack, authoritative, writeErr)
	return authoritative, writeErr
}

func (u *Update[T]) settle(state State, value T, err error) {
	u.mu.Lock()
	u.state = state
	u.value = value
	u.mu.Unlock()
	u.notify(err)
}

func (u *Update[T]) notify(err error) {
	if u.observer == nil {
		return
	}
	u.mu.Lock()
	t := Transition[T]{ID: u.id, State: u.state, Value: u.value}
	u.mu.Unlock()
	if err != nil {
		t.Err = err.Error()
	}
	u.observer(t)
}
