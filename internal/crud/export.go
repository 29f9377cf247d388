// ABOUTME: CSV export of the current page using the descriptor's export fields
// ABOUTME: Every value is double-quoted with inner quotes doubled; lines join with \n

package crud

import (
	"fmt"
	"strings"
	"time"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
)

// Export is a generated file ready to be downloaded or written.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportCurrentPageCSV renders the rows of the current page as CSV.
func (e *Engine) ExportCurrentPageCSV() (Export, error) {
	page := e.Page()
	if len(page.Items) == 0 {
		return Export{}, fmt.Errorf("exporting %s: %w", e.kind, ErrEmptyPage)
	}

	return Export{
		Filename:    fmt.Sprintf("%s_export_%s.csv", e.kind, e.deps.Now().UTC().Format(time.DateOnly)),
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte(renderCSV(e.desc.Exports(), page.Items)),
	}, nil
}

func renderCSV(fields []entity.ExportField, rows []entity.Record) string {
	lines := make([]string, 0, len(rows)+1)

	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = f.Label
	}
	lines = append(lines, strings.Join(labels, ","))

	for _, r := range rows {
		cells := make([]string, len(fields))
		for i, f := range fields {
			cells[i] = quote(r.Text(f.Key))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
