// Package changefeed turns row-level change notifications into debounced
// recompute calls.
package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
)

// Operation is the kind of row change
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	// OpResync is emitted when a source may have missed changes, e.g. after
	// a reconnect
	OpResync Operation = "resync"
)

// Event is one row change. Before is empty for inserts and After is empty
// for deletes.
type Event struct {
	Operation  Operation       `json:"operation"`
	Collection string          `json:"collection"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Handler receives events from a Source
type Handler func(ctx context.Context, ev Event)

// Source delivers change events until ctx is cancelled
type Source interface {
	Subscribe(ctx context.Context, handler Handler) error
}

// Decode parses a JSON change payload
func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("invalid change payload: %w", err)
	}
	return validate(ev)
}

func validate(ev Event) (Event, error) {
	switch ev.Operation {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return ev, fmt.Errorf("unknown change operation %q", ev.Operation)
	}
	if ev.Collection == "" {
		return ev, fmt.Errorf("change payload without collection")
	}
	if isNull(ev.Before) {
		ev.Before = nil
	}
	if isNull(ev.After) {
		ev.After = nil
	}
	return ev, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
