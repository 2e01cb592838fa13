// runextract runs the extraction pipeline on a single file and prints
// the result as JSON. Useful for trying documents without the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/majinstudio/labvitals/internal/common"
	"github.com/majinstudio/labvitals/internal/extract"
	"github.com/majinstudio/labvitals/internal/ocr"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file>\n", os.Args[0])
		os.Exit(2)
	}

	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ocrExtractor := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		TesseractLang: cfg.OCR.Lang,
		PSM:           cfg.OCR.PSM,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
	dispatcher := extract.NewDispatcher(ocrExtractor, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ExtractTimeout)
	defer cancel()

	out := dispatcher.Extract(ctx, os.Args[1])

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out.AsJSONValue()); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	if !out.OK() {
		os.Exit(1)
	}
}
