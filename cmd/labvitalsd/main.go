// labvitalsd is the lab value extraction and risk scoring service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/majinstudio/labvitals/internal/audit"
	"github.com/majinstudio/labvitals/internal/common"
	"github.com/majinstudio/labvitals/internal/export"
	"github.com/majinstudio/labvitals/internal/extract"
	"github.com/majinstudio/labvitals/internal/ocr"
	"github.com/majinstudio/labvitals/internal/risk"
	"github.com/majinstudio/labvitals/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ocrExtractor := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		TesseractLang: cfg.OCR.Lang,
		PSM:           cfg.OCR.PSM,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	dispatcher := extract.NewDispatcher(ocrExtractor, logger)

	models := risk.NewModelCache(cfg.Models.Dir, cfg.Models.OrtLib, logger)
	defer models.Close()
	scorer := risk.NewScorer(models, logger)

	// The audit trail is best effort: a broken DSN degrades the service
	// rather than stopping it.
	var (
		auditStore *audit.Store
		exporter   *export.Service
	)
	if cfg.Audit.DSN != "" {
		auditStore, err = audit.Open(ctx, cfg.Audit.DSN, logger)
		if err != nil {
			logger.Warn("audit store unavailable, continuing without trail", "error", err)
			auditStore = nil
		} else {
			defer auditStore.Close()
			exporter = export.NewService(auditStore, logger)
		}
	}

	srv := server.New(server.Config{
		UploadDir:      cfg.Server.UploadDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		ExtractTimeout: cfg.Server.ExtractTimeout,
	}, dispatcher, scorer, auditStore, exporter, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
