package notify

import (
	"strings"
	"unicode/utf8"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
)

const (
	ProblemsTitle = "Problematic backlinks"
	NoProblems    = "No problematic backlinks were found"
	bullet        = ":black_small_square:"
)

// FormatProblems renders every result that is not a followed link as one
// bullet row of backtick-quoted, column-aligned cells.
func FormatProblems(rs domain.ResultSet) (title, text string) {
	problems := rs.Problems()
	if len(problems) == 0 {
		return ProblemsTitle, "\n`" + NoProblems + "`"
	}

	cols := make([][]string, 0, len(problems))
	for _, r := range problems {
		cols = append(cols, []string{r.Backlink, r.Status.String()})
	}
	widths := columnWidths(cols)

	rows := make([]string, 0, len(cols))
	for _, c := range cols {
		var b strings.Builder
		b.WriteString(bullet)
		for i, cell := range c {
			b.WriteString("`")
			b.WriteString(pad(cell, widths[i]))
			b.WriteString("` ")
		}
		rows = append(rows, b.String())
	}
	return ProblemsTitle, "\n" + strings.Join(rows, "\n")
}

func columnWidths(rows [][]string) []int {
	var w []int
	for _, r := range rows {
		for i, cell := range r {
			if i >= len(w) {
				w = append(w, 0)
			}
			if n := utf8.RuneCountInString(cell); n > w[i] {
				w[i] = n
			}
		}
	}
	return w
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
