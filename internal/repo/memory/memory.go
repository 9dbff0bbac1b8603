package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
	"github.com/hamed0406/backlinkmonitor/internal/repo"
)

// Store keeps the most recent result set in memory.
type Store struct {
	mu     sync.RWMutex
	latest domain.ResultSet
	saved  bool
}

func New() *Store {
	return &Store{}
}

func (m *Store) Save(ctx context.Context, rs domain.ResultSet) error {
	cp := make(domain.ResultSet, len(rs))
	copy(cp, rs)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = cp
	m.saved = true
	return nil
}

func (m *Store) Latest(ctx context.Context) (domain.ResultSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.saved {
		return nil, repo.ErrNoResults
	}
	out := make(domain.ResultSet, len(m.latest))
	copy(out, m.latest)
	return out, nil
}
