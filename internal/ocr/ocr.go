// Package ocr turns image and PDF files into raw text for the
// line-oriented scanner.
//
// Images are preprocessed in-process (grayscale, width rescale, Otsu
// binarization) and recognized with the external tesseract binary in
// single-text-block mode. PDFs get direct per-page text extraction via
// pdfcpu, with a rasterize-and-OCR fallback (pdftoppm) for pages that
// carry too little text to be a digital report page.
package ocr

import (
	"log/slog"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	TesseractLang string // default "eng"
	PSM           int    // tesseract page segmentation mode, default 6 (single block)
	DPI           int    // rasterization DPI for scanned PDF pages, default 150
	MaxPages      int    // 0 = no limit
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}
