package report

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Table is a rendered report: a title, column headers and string cells.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Markdown renders the table as a title line followed by a pipe table with
// left-aligned columns. Every line ends with a newline.
func (t Table) Markdown() string {
	var b strings.Builder
	b.WriteString(t.Title)
	b.WriteString(":\n")
	writeRow(&b, t.Columns)
	align := make([]string, len(t.Columns))
	for i := range align {
		align[i] = ":---"
	}
	writeRow(&b, align)
	for _, row := range t.Rows {
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// sortByDesc orders rows by metric, highest first. Equal metrics keep their
// relative order.
func sortByDesc[T any, N cmp.Ordered](rows []T, metric func(T) N) {
	slices.SortStableFunc(rows, func(a, b T) int {
		return cmp.Compare(metric(b), metric(a))
	})
}

// longest returns the first name with the most characters.
func longest(names []string) string {
	best := ""
	bestLen := -1
	for _, name := range names {
		if n := utf8.RuneCountInString(name); n > bestLen {
			best, bestLen = name, n
		}
	}
	return best
}

var numbers = message.NewPrinter(language.English)

// groupInt renders n with comma thousands separators.
func groupInt(n int64) string {
	return numbers.Sprintf("%d", n)
}

// groupMoney renders v with comma thousands separators and two decimals.
func groupMoney(v float64) string {
	return numbers.Sprintf("%.2f", v)
}
