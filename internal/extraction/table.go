package extraction

import (
	"strings"

	"github.com/majinstudio/labvitals/constants"
)

// Table is a parsed tabular document: named columns plus rows of cells,
// all treated as text.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ScanTable matches every cell against the field tables. When a cell
// names a field, the other columns of that row are scanned in column
// order for the first cleaned value in range; columns whose header
// contains an ignore-keyword are skipped so reference-range columns
// never supply the value. The first qualifying column ends the scan for
// that row (first match, not best match).
func ScanTable(t *Table) Result {
	res := Result{}
	if t == nil {
		return res
	}

	skip := make([]bool, len(t.Headers))
	for i, h := range t.Headers {
		hl := strings.ToLower(h)
		for _, bad := range constants.IgnoreKeywords {
			if strings.Contains(hl, bad) {
				skip[i] = true
				break
			}
		}
	}

	for _, row := range t.Rows {
		for ci, cell := range row {
			f, ok := MatchKey(cell)
			if !ok || res.Has(f) {
				continue
			}
			for oc := range t.Headers {
				if oc == ci || oc >= len(row) || skip[oc] {
					continue
				}
				if v, okc := CleanValue(row[oc]); okc && constants.InRange(f, v) {
					res.Record(f, v)
					break
				}
			}
		}
	}
	return res
}
