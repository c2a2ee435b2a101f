package sheets

import (
	"context"
	"sync"
)

// Memory is an in-process store with the same row semantics as a sheet.
// Tests across packages use it in place of a real spreadsheet.
type Memory struct {
	mu   sync.Mutex
	rows [][]string

	// ReadErr and AppendErr, when set, are returned by the matching call.
	ReadErr   error
	AppendErr error
}

func NewMemory(rows ...[]string) *Memory {
	m := &Memory{}
	for _, r := range rows {
		m.rows = append(m.rows, append([]string(nil), r...))
	}
	return m
}

func (m *Memory) Rows(context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *Memory) Append(_ context.Context, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.rows = append(m.rows, append([]string(nil), row...))
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
