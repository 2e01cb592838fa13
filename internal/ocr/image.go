package ocr

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// ExtractImageText preprocesses an image and runs tesseract over it.
func (e *Extractor) ExtractImageText(ctx context.Context, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "lv-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	pre := PreprocessImage(path, tmpDir)
	if pre != path {
		e.logger.Debug("image preprocessed", "src", path, "out", pre)
	}
	return e.tesseract(ctx, pre)
}

// tesseract runs OCR in single-text-block mode over one image file.
func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang> --psm <n>
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang, "--psm", strconv.Itoa(e.cfg.PSM)}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
