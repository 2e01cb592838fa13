// Package export renders the extraction audit trail as an XLSX
// workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/majinstudio/labvitals/internal/audit"
)

// Service is a tiny façade over the audit store that produces XLSX
// bytes for exports.
type Service struct {
	store  *audit.Store
	logger *slog.Logger
}

func NewService(store *audit.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportJobsXLSX returns an XLSX workbook for jobs in the given window.
// If only from is provided -> from..now; nil/nil -> everything.
func (s *Service) ExportJobsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()
	if from != nil && to == nil {
		now := time.Now().UTC()
		to = &now
	}

	jobs, err := s.store.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Created At",
		"File Name",
		"Format",
		"Status",
		"Fields Found",
		"Fields",
		"Error",
		"Duration (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, j := range jobs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, j.CreatedAt.Format(time.RFC3339))
		write(2, j.FileName)
		write(3, j.Format)
		write(4, string(j.Status))
		write(5, j.FieldsFound)
		write(6, j.FieldsJSON)
		write(7, j.ErrorMessage)
		write(8, j.DurationMS)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 22)
	_ = f.SetColWidth(sheet, "B", "B", 32)
	_ = f.SetColWidth(sheet, "F", "F", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("audit export built",
		"jobs", len(jobs), "bytes", buf.Len(), "duration_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
