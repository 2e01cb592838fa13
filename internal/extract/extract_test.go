package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// stubOCR is a canned TextOCR for dispatcher tests.
type stubOCR struct {
	imageText string
	imageErr  error
	pdfText   string
	pdfErr    error
}

func (s *stubOCR) ExtractImageText(context.Context, string) (string, error) {
	return s.imageText, s.imageErr
}

func (s *stubOCR) ExtractPDFText(context.Context, string) (string, error) {
	return s.pdfText, s.pdfErr
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractCSV(t *testing.T) {
	path := writeFile(t, "report.csv",
		"Test,Result,Ref Range\nGlucose,105,70-110\nHbA1c,5.9,4-6\n")

	d := NewDispatcher(&stubOCR{}, nil)
	out := d.Extract(context.Background(), path)
	if !out.OK() {
		t.Fatalf("unexpected error: %s", out.Err)
	}
	if out.Fields["glucose"] != 105 || out.Fields["hba1c"] != 5.9 {
		t.Fatalf("fields = %v", out.Fields)
	}
}

func TestExtractCSVEmpty(t *testing.T) {
	path := writeFile(t, "empty.csv", "")
	out := NewDispatcher(&stubOCR{}, nil).Extract(context.Background(), path)
	if out.OK() {
		t.Fatalf("expected error for empty csv, got %v", out.Fields)
	}
	if !strings.HasPrefix(out.Err, "CSV Error") {
		t.Fatalf("err = %q", out.Err)
	}
}

func TestExtractCSVMalformed(t *testing.T) {
	path := writeFile(t, "bad.csv", "a,\"unclosed\nGlucose,105\n")
	out := NewDispatcher(&stubOCR{}, nil).Extract(context.Background(), path)
	if out.OK() {
		t.Fatalf("expected error for malformed csv, got %v", out.Fields)
	}
}

func TestExtractJSON(t *testing.T) {
	path := writeFile(t, "report.json", `{"glucose": 105, "results": [{"test": "ldl", "result": 120}]}`)
	out := NewDispatcher(&stubOCR{}, nil).Extract(context.Background(), path)
	if !out.OK() {
		t.Fatalf("unexpected error: %s", out.Err)
	}
	if out.Fields["glucose"] != 105 || out.Fields["ldl"] != 120 {
		t.Fatalf("fields = %v", out.Fields)
	}
}

// Near-JSON exports (trailing commas and friends) get one repair pass
// before the scan.
func TestExtractJSONRepaired(t *testing.T) {
	path := writeFile(t, "trailing.json", `{"glucose": 105,}`)
	out := NewDispatcher(&stubOCR{}, nil).Extract(context.Background(), path)
	if !out.OK() {
		t.Fatalf("unexpected error: %s", out.Err)
	}
	if out.Fields["glucose"] != 105 {
		t.Fatalf("fields = %v", out.Fields)
	}
}

func TestExtractXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Test", "Result", "Ref Range"},
		{"Cholesterol", "210", "125-200"},
		{"HDL", 55, "40-60"},
	}
	for ri, row := range rows {
		for ci, v := range row {
			cell, _ := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	out := NewDispatcher(&stubOCR{}, nil).Extract(context.Background(), path)
	if !out.OK() {
		t.Fatalf("unexpected error: %s", out.Err)
	}
	if out.Fields["cholesterol"] != 210 || out.Fields["hdl"] != 55 {
		t.Fatalf("fields = %v", out.Fields)
	}
}

func TestExtractImageRoute(t *testing.T) {
	ocr := &stubOCR{imageText: "Glucose: 105 mg/dL\nHemoglobin 14.2"}
	out := NewDispatcher(ocr, nil).Extract(context.Background(), "scan.png")
	if !out.OK() {
		t.Fatalf("unexpected error: %s", out.Err)
	}
	if out.Fields["glucose"] != 105 || out.Fields["hemoglobin"] != 14.2 {
		t.Fatalf("fields = %v", out.Fields)
	}
}

func TestExtractPDFRoute(t *testing.T) {
	ocr := &stubOCR{pdfText: "Cholesterol 210"}
	out := NewDispatcher(ocr, nil).Extract(context.Background(), "report.pdf")
	if !out.OK() {
		t.Fatalf("unexpected error: %s", out.Err)
	}
	if out.Fields["cholesterol"] != 210 {
		t.Fatalf("fields = %v", out.Fields)
	}
}

func TestExtractOCRFailureIsOutcome(t *testing.T) {
	ocr := &stubOCR{imageErr: os.ErrNotExist}
	out := NewDispatcher(ocr, nil).Extract(context.Background(), "scan.png")
	if out.OK() {
		t.Fatal("expected error outcome")
	}
}

type panickyOCR struct{}

func (panickyOCR) ExtractImageText(context.Context, string) (string, error) { panic("boom") }
func (panickyOCR) ExtractPDFText(context.Context, string) (string, error)   { panic("boom") }

// A panic anywhere in a pipeline becomes an error outcome, never an
// escaped panic.
func TestExtractRecoversPanic(t *testing.T) {
	out := NewDispatcher(panickyOCR{}, nil).Extract(context.Background(), "scan.png")
	if out.OK() {
		t.Fatal("expected error outcome")
	}
	if !strings.Contains(out.Err, "boom") {
		t.Fatalf("err = %q", out.Err)
	}
}

func TestOutcomeAsJSONValue(t *testing.T) {
	ok := Outcome{Fields: map[string]float64{"glucose": 105}}
	if m, isMap := ok.AsJSONValue().(map[string]float64); !isMap || m["glucose"] != 105 {
		t.Fatalf("AsJSONValue = %v", ok.AsJSONValue())
	}

	empty := Outcome{}
	if m, isMap := empty.AsJSONValue().(map[string]float64); !isMap || len(m) != 0 {
		t.Fatalf("AsJSONValue = %v", empty.AsJSONValue())
	}

	failed := Outcome{Err: "CSV Error: empty file"}
	m, isMap := failed.AsJSONValue().(map[string]string)
	if !isMap || m["error"] != "CSV Error: empty file" {
		t.Fatalf("AsJSONValue = %v", failed.AsJSONValue())
	}
}
