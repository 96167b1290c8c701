package adapter

import "context"

// Memory is a reference DataAdapter backed by an in-memory slice, used by
// tests (cmd/demo uses its own synthetic adapter). It implements PageLoader, RangeLoader, and
// CursorLoader all at once so any Strategy can exercise it.
type Memory struct {
	Items []Item
	Total int // authoritative total, may exceed len(Items) (massive-list mode)

	// Fail, if set, makes every load for the given rangeId-aligned offset
	// fail the first N times before succeeding; used to exercise backoff.
	Fail map[int]int
	attempts map[int]int
}

func (m *Memory) Supports(s Strategy) bool {
	switch s {
	case StrategyPage, StrategyOffset, StrategyCursor:
		return true
	default:
		return false
	}
}

func (m *Memory) slice(offset, limit int) ([]Item, error) {
	if m.attempts == nil {
		m.attempts = make(map[int]int)
	}
	if remaining, failing := m.Fail[offset]; failing && m.attempts[offset] < remaining {
		m.attempts[offset]++
		return nil, &AdapterError{Message: "simulated transient failure"}
	}

	if offset >= len(m.Items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.Items) {
		end = len(m.Items)
	}
	return m.Items[offset:end], nil
}

func (m *Memory) result(items []Item) Result {
	total := m.Total
	if total == 0 {
		total = len(m.Items)
	}
	return Result{Items: items, Meta: Meta{Total: &total}}
}

func (m *Memory) LoadPage(_ context.Context, p PageParams) (Result, error) {
	offset := (p.Page - 1) * p.Limit
	items, err := m.slice(offset, p.Limit)
	if err != nil {
		return Result{}, err
	}
	return m.result(items), nil
}

func (m *Memory) LoadRange(_ context.Context, p RangeParams) (Result, error) {
	items, err := m.slice(p.Offset, p.Limit)
	if err != nil {
		return Result{}, err
	}
	return m.result(items), nil
}

func (m *Memory) LoadWithCursor(_ context.Context, p CursorParams) (Result, error) {
	offset := 0
	if p.Cursor != "" {
		for i, it := range m.Items {
			if it.ID == p.Cursor {
				offset = i + 1
				break
			}
		}
	}
	items, err := m.slice(offset, p.Limit)
	if err != nil {
		return Result{}, err
	}
	return m.result(items), nil
}
