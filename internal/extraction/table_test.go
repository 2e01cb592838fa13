package extraction

import (
	"testing"

	"github.com/majinstudio/labvitals/constants"
)

func TestScanTableBasicReport(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Test", "Result", "Ref Range"},
		Rows: [][]string{
			{"Glucose", "105", "70-110"},
			{"HbA1c", "5.9", "4-6"},
			{"Total Cholesterol", "210 mg/dL", "125-200"},
		},
	}
	res := ScanTable(tbl)
	want := map[constants.Field]float64{
		constants.Glucose:     105,
		constants.HbA1c:       5.9,
		constants.Cholesterol: 210,
	}
	for f, v := range want {
		if res[f] != v {
			t.Errorf("%s = %v, want %v", f, res[f], v)
		}
	}
	if len(res) != len(want) {
		t.Fatalf("got %d fields, want %d: %v", len(res), len(want), res)
	}
}

// A reference-range column must never supply the value, even when the
// result column is unreadable.
func TestScanTableSkipsIgnoredColumns(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Test", "Result", "Ref Range"},
		Rows: [][]string{
			{"Cholesterol", "pending", "250"},
		},
	}
	res := ScanTable(tbl)
	if _, ok := res[constants.Cholesterol]; ok {
		t.Fatalf("cholesterol taken from ref column: %v", res)
	}
}

// The first qualifying non-range column in column order supplies the
// value.
func TestScanTableFirstColumnInOrderWins(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Test", "unused", "Result", "Range"},
		Rows: [][]string{
			{"Glucose (Fasting)", "Range", "98", "70-110"},
		},
	}
	res := ScanTable(tbl)
	if got := res[constants.Glucose]; got != 98 {
		t.Fatalf("glucose = %v, want 98", got)
	}
}

func TestScanTableFirstRowWins(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Test", "Result"},
		Rows: [][]string{
			{"Glucose", "105"},
			{"Blood Glucose", "200"},
		},
	}
	res := ScanTable(tbl)
	if got := res[constants.Glucose]; got != 105 {
		t.Fatalf("glucose = %v, want first row value 105", got)
	}
}

func TestScanTableRaggedRows(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Test", "Result", "Flag"},
		Rows: [][]string{
			{"HDL", "55"},
			{"LDL"},
		},
	}
	res := ScanTable(tbl)
	if got := res[constants.HDL]; got != 55 {
		t.Fatalf("hdl = %v, want 55", got)
	}
	if _, ok := res[constants.LDL]; ok {
		t.Fatalf("ldl recorded from a row with no value cell: %v", res)
	}
}

func TestScanTableNil(t *testing.T) {
	if res := ScanTable(nil); len(res) != 0 {
		t.Fatalf("nil table produced %v", res)
	}
}
