// Package report writes result sets as status tables.
package report

import (
	"fmt"
	"strconv"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
)

// Header is the column row of every status table.
var Header = []string{"Backlink", "Status", "Response code"}

// Rows renders rs as table rows, header first. No index column.
func Rows(rs domain.ResultSet) [][]string {
	out := make([][]string, 0, len(rs)+1)
	out = append(out, Header)
	for _, r := range rs {
		out = append(out, []string{r.Backlink, r.Status.String(), r.Code()})
	}
	return out
}

// ParseRows is the inverse of Rows.
func ParseRows(rows [][]string) (domain.ResultSet, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	if !equalRow(rows[0], Header) {
		return nil, fmt.Errorf("unexpected header %q", rows[0])
	}

	rs := make(domain.ResultSet, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if len(row) != len(Header) {
			return nil, fmt.Errorf("row %d: want %d columns, got %d", line, len(Header), len(row))
		}
		st, err := domain.ParseStatus(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		r := domain.CheckResult{Backlink: row[0], Status: st}
		if row[2] != "None" && row[2] != "" {
			code, err := strconv.Atoi(row[2])
			if err != nil {
				return nil, fmt.Errorf("row %d: response code %q: %w", line, row[2], err)
			}
			r.ResponseCode = &code
		}
		rs = append(rs, r)
	}
	return rs, nil
}

func equalRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
