package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/majinstudio/labvitals/constants"
	"github.com/majinstudio/labvitals/internal/audit"
)

func TestExportJobsXLSX(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "audit.db")
	store, err := audit.Open(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	id, err := store.Start(ctx, "report.csv", constants.CSV)
	if err != nil {
		t.Fatal(err)
	}
	err = store.Finish(ctx, id, audit.Outcome{
		Status:      constants.JobStatusOK,
		FieldsFound: 2,
		FieldsJSON:  `{"glucose":105,"hba1c":5.9}`,
		Duration:    750 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	svc := NewService(store, nil)
	data, err := svc.ExportJobsXLSX(ctx, nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Extractions")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1 job", len(rows))
	}
	if rows[0][0] != "Created At" || rows[0][1] != "File Name" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][1] != "report.csv" || rows[1][3] != "OK" {
		t.Fatalf("job row = %v", rows[1])
	}
}

func TestExportJobsXLSXEmptyTrail(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "audit.db")
	store, err := audit.Open(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	data, err := NewService(store, nil).ExportJobsXLSX(ctx, nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Extractions")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want header only", len(rows))
	}
}
