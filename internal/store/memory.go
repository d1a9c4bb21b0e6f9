package store

import (
	"context"
	"errors"
	"maps"
	"strings"
	"sync"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// Memory is an in-process store for tests, demos and the CLI.
type Memory struct {
	mu      sync.RWMutex
	records []core.Record
	byKey   map[string]int // ticket number → index into records

	// FailAfter makes UpsertBatch fail once this many batches succeeded.
	// Zero disables the failure.
	FailAfter int
	batches   int
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{byKey: make(map[string]int)}
}

// UpsertBatch inserts new ticket numbers and replaces existing ones in place.
func (m *Memory) UpsertBatch(ctx context.Context, records []core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAfter > 0 && m.batches >= m.FailAfter {
		return ErrInjected
	}
	m.batches++

	for _, rec := range records {
		stored := maps.Clone(rec)
		key := strings.TrimSpace(rec.Key())
		if key == "" {
			m.records = append(m.records, stored)
			continue
		}
		if i, ok := m.byKey[key]; ok {
			m.records[i] = stored
			continue
		}
		m.byKey[key] = len(m.records)
		m.records = append(m.records, stored)
	}
	return nil
}

// FetchAll returns a copy of every stored record in insertion order.
func (m *Memory) FetchAll(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Record, len(m.records))
	for i, rec := range m.records {
		out[i] = maps.Clone(rec)
	}
	return out, nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// ErrInjected is returned by UpsertBatch once FailAfter batches succeeded.
var ErrInjected = errors.New("memory store: injected batch failure")
