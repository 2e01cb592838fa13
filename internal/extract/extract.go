// Package extract dispatches a file to the right reader+scanner
// pipeline and returns one canonical result.
package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/kaptinlin/jsonrepair"
	"github.com/xuri/excelize/v2"

	"github.com/majinstudio/labvitals/constants"
	"github.com/majinstudio/labvitals/internal/extraction"
)

// TextOCR is the reader surface the dispatcher needs for image and PDF
// input. Stubbed in tests.
type TextOCR interface {
	ExtractImageText(ctx context.Context, path string) (string, error)
	ExtractPDFText(ctx context.Context, path string) (string, error)
}

// Outcome is the result of one extraction run: a set of canonical
// fields, or a structural error message. A run that parses the document
// but finds nothing yields an empty Fields map and no error; callers
// distinguish "nothing found" from "failed".
type Outcome struct {
	Fields map[string]float64
	Err    string
}

func (o Outcome) OK() bool { return o.Err == "" }

// AsJSONValue returns the wire shape of the outcome: the field mapping
// on success, {"error": message} on structural failure.
func (o Outcome) AsJSONValue() any {
	if !o.OK() {
		return map[string]string{"error": o.Err}
	}
	if o.Fields == nil {
		return map[string]float64{}
	}
	return o.Fields
}

type Dispatcher struct {
	ocr    TextOCR
	logger *slog.Logger
}

func NewDispatcher(ocr TextOCR, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{ocr: ocr, logger: logger}
}

// Extract picks a pipeline by file extension (case-insensitive) and
// runs it. Structural failures come back as Outcome.Err; nothing
// escapes as a panic.
func (d *Dispatcher) Extract(ctx context.Context, path string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("extraction panic", "path", path, "panic", r)
			out = Outcome{Err: fmt.Sprintf("Extraction Error: %v", r)}
		}
	}()

	switch constants.MapExtToFormat(constants.ExtFromPath(path)) {
	case constants.CSV:
		return d.extractCSV(path)
	case constants.JSON:
		return d.extractJSON(path)
	case constants.XLSX:
		return d.extractXLSX(path)
	case constants.PDF:
		text, err := d.ocr.ExtractPDFText(ctx, path)
		if err != nil {
			return Outcome{Err: fmt.Sprintf("PDF Error: %v", err)}
		}
		return fieldsOutcome(extraction.ScanText(text))
	default:
		text, err := d.ocr.ExtractImageText(ctx, path)
		if err != nil {
			return Outcome{Err: fmt.Sprintf("Extraction Error: %v", err)}
		}
		return fieldsOutcome(extraction.ScanText(text))
	}
}

func (d *Dispatcher) extractCSV(path string) Outcome {
	f, err := os.Open(path)
	if err != nil {
		return Outcome{Err: fmt.Sprintf("CSV Error: %v", err)}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows
	records, err := r.ReadAll()
	if err != nil {
		return Outcome{Err: fmt.Sprintf("CSV Error: %v", err)}
	}
	if len(records) == 0 {
		return Outcome{Err: "CSV Error: empty file"}
	}

	table := &extraction.Table{Headers: records[0]}
	if len(records) > 1 {
		table.Rows = records[1:]
	}
	return fieldsOutcome(extraction.ScanTable(table))
}

func (d *Dispatcher) extractJSON(path string) Outcome {
	data, err := os.ReadFile(path)
	if err != nil {
		return Outcome{Err: fmt.Sprintf("JSON Error: %v", err)}
	}

	tree, err := extraction.DecodeTree(data)
	if err != nil {
		// one salvage attempt for near-JSON exports (trailing commas,
		// single quotes, unquoted keys)
		repaired, repErr := jsonrepair.JSONRepair(string(data))
		if repErr != nil {
			return Outcome{Err: fmt.Sprintf("JSON Error: %v", err)}
		}
		tree, err = extraction.DecodeTree([]byte(repaired))
		if err != nil {
			return Outcome{Err: fmt.Sprintf("JSON Error: %v", err)}
		}
		d.logger.Warn("json document repaired before scan", "path", path)
	}
	return fieldsOutcome(extraction.ScanTree(tree))
}

func (d *Dispatcher) extractXLSX(path string) Outcome {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Outcome{Err: fmt.Sprintf("XLSX Error: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Outcome{Err: "XLSX Error: no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Outcome{Err: fmt.Sprintf("XLSX Error: %v", err)}
	}
	if len(rows) == 0 {
		return Outcome{Err: "XLSX Error: empty sheet"}
	}

	table := &extraction.Table{Headers: rows[0]}
	if len(rows) > 1 {
		table.Rows = rows[1:]
	}
	return fieldsOutcome(extraction.ScanTable(table))
}

func fieldsOutcome(res extraction.Result) Outcome {
	return Outcome{Fields: res.AsStringMap()}
}
