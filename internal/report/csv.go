package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
	"github.com/hamed0406/backlinkmonitor/internal/repo"
)

// CSVStore persists the latest run as a CSV file at Path, replacing any
// previous file.
type CSVStore struct {
	Path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

// Save writes to a temp file next to Path and renames it into place, so a
// failed write leaves the previous file untouched.
func (s *CSVStore) Save(ctx context.Context, rs domain.ResultSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAtomic(s.Path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.WriteAll(Rows(rs)); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	})
}

func (s *CSVStore) Latest(ctx context.Context) (domain.ResultSet, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repo.ErrNoResults
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", s.Path, err)
	}
	rs, err := ParseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", s.Path, err)
	}
	return rs, nil
}

func writeAtomic(path string, write func(f *os.File) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
