package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/majinstudio/labvitals/constants"
)

// minDirectTextChars is the cutoff below which a page is treated as a
// scanned image rather than a digital report page.
const minDirectTextChars = 20

// ExtractPDFText extracts text from every page of a PDF. Pages with a
// usable text layer (including table cell text, which shows up in the
// content stream) are read directly via pdfcpu. A page whose direct
// text is shorter than 20 characters or mentions no field synonym is
// rasterized at the configured DPI and routed through image OCR. When
// pdftoppm is unavailable the fallback is skipped silently and whatever
// direct text exists is kept.
func (e *Extractor) ExtractPDFText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var b strings.Builder
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if e.cfg.MaxPages > 0 && pageNr > e.cfg.MaxPages {
			break
		}
		pageText := extractPageText(pctx, pageNr)

		if pageNeedsOCR(pageText) {
			ocrText, err := e.ocrPDFPage(ctx, path, pageNr)
			if err != nil {
				// capability-missing or render failure: degrade to direct text
				e.logger.Debug("pdf ocr fallback unavailable", "page", pageNr, "error", err)
			} else if ocrText != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(pageText)
				b.WriteByte('\n')
				b.WriteString(ocrText)
				continue
			}
		}

		if pageText != "" {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(pageText)
		}
	}
	return b.String(), nil
}

// pageNeedsOCR reports whether direct extraction looks like a scanned
// page: almost no text, or text that never mentions a field synonym.
func pageNeedsOCR(text string) bool {
	if len(strings.TrimSpace(text)) < minDirectTextChars {
		return true
	}
	lower := strings.ToLower(text)
	for _, f := range constants.AllFields {
		for _, syn := range constants.Synonyms[f] {
			if strings.Contains(lower, syn) {
				return false
			}
		}
	}
	return true
}

// ocrPDFPage rasterizes a single page with pdftoppm and OCRs it.
func (e *Extractor) ocrPDFPage(ctx context.Context, path string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "lv-pp-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	p := strconv.Itoa(page)
	// pdftoppm -r <dpi> -png -f <n> -l <n> <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", strconv.Itoa(e.cfg.DPI), "-png", "-f", p, "-l", p, path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}

	pre := PreprocessImage(matches[0], tmpDir)
	return e.tesseract(ctx, pre)
}

// extractPageText pulls the text layer of one page from its content
// stream.
func extractPageText(pctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return streamToText(data)
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^)\\])*)\)`)

// streamToText parses PDF content stream operators for text. Text-show
// operators (Tj, TJ, ') contribute characters; positioning operators
// (Td, TD, T*) contribute separators so label and value stay on one
// logical line while distinct rows break apart.
func streamToText(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if s := decodePDFString(m[1]); s != "" {
					sb.WriteString(s)
					sb.WriteByte(' ')
				}
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if s := decodePDFString(m[1]); s != "" {
					sb.WriteByte('\n')
					sb.WriteString(s)
				}
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			sb.WriteByte(' ')
		case bytes.Equal(line, []byte("T*")), bytes.HasSuffix(line, []byte("ET")):
			sb.WriteByte('\n')
		}
	}
	return tidyLines(sb.String())
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// tidyLines collapses runs of spaces within lines and drops blank
// lines, preserving the line structure the text scanner depends on.
func tidyLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.Join(strings.Fields(ln), " ")
		if ln != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}
