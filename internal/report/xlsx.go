package report

import (
	"context"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
)

const sheetName = "Backlinks"

// XLSXStore writes the same table as CSVStore into a spreadsheet.
type XLSXStore struct {
	Path string
}

func NewXLSXStore(path string) *XLSXStore {
	return &XLSXStore{Path: path}
}

func (s *XLSXStore) Save(ctx context.Context, rs domain.ResultSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	for i, row := range Rows(rs) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		// response codes as numbers so the sheet can sort/filter them
		if i > 0 && rs[i-1].ResponseCode != nil {
			vals[2] = *rs[i-1].ResponseCode
		}
		if err := f.SetSheetRow(sheetName, cell, &vals); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	return writeAtomic(s.Path, func(tmp *os.File) error {
		if _, err := f.WriteTo(tmp); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		return nil
	})
}
