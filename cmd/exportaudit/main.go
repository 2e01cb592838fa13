// exportaudit dumps the extraction audit trail to an XLSX workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/majinstudio/labvitals/internal/audit"
	"github.com/majinstudio/labvitals/internal/common"
	"github.com/majinstudio/labvitals/internal/export"
)

func main() {
	var (
		out      = flag.String("out", "extractions.xlsx", "output workbook path")
		fromFlag = flag.String("from", "", "window start (YYYY-MM-DD)")
		toFlag   = flag.String("to", "", "window end (YYYY-MM-DD)")
	)
	flag.Parse()

	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	parse := func(v string) (*time.Time, error) {
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", v, err)
		}
		return &t, nil
	}
	from, err := parse(*fromFlag)
	if err != nil {
		logger.Error("parse from", "error", err)
		os.Exit(2)
	}
	to, err := parse(*toFlag)
	if err != nil {
		logger.Error("parse to", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()
	store, err := audit.Open(ctx, cfg.Audit.DSN, logger)
	if err != nil {
		logger.Error("open audit store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	svc := export.NewService(store, logger)
	data, err := svc.ExportJobsXLSX(ctx, from, to)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("write workbook", "error", err)
		os.Exit(1)
	}
	logger.Info("workbook written", "path", *out, "bytes", len(data))
}
