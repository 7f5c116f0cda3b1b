package store

import (
	"context"
	"slices"
	"sync"
)

// Memory store keeps passwords in process.
type Memory struct {
	mu   sync.Mutex
	rows []string
}

// NewMemory ...
func NewMemory(rows ...string) *Memory {
	return &Memory{
		rows: slices.Clone(rows),
	}
}

// FetchAndDelete passwords.
func (m *Memory) FetchAndDelete(ctx context.Context, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := pick(m.rows, count)
	if err != nil {
		return nil, err
	}
	for i := len(rows) - 1; i >= 0; i-- {
		m.rows = slices.Delete(m.rows, rows[i].index, rows[i].index+1)
	}
	return passwords(rows), nil
}

// Len returns number of rows left, blank and header rows included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
