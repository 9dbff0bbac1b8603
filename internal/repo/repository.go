package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
)

// ErrNoResults is returned by Latest before any run has been saved.
var ErrNoResults = errors.New("no results yet")

// Ports (interfaces); swap in any output adapter later.
type ResultSaver interface {
	Save(ctx context.Context, rs domain.ResultSet) error
}

type ResultStore interface {
	ResultSaver
	Latest(ctx context.Context) (domain.ResultSet, error)
}

// Fallback reads from each store in turn until one has results.
type Fallback []ResultStore

func (f Fallback) Save(ctx context.Context, rs domain.ResultSet) error {
	for _, s := range f {
		if err := s.Save(ctx, rs); err != nil {
			return err
		}
	}
	return nil
}

func (f Fallback) Latest(ctx context.Context) (domain.ResultSet, error) {
	for _, s := range f {
		rs, err := s.Latest(ctx)
		if errors.Is(err, ErrNoResults) {
			continue
		}
		return rs, err
	}
	return nil, ErrNoResults
}
