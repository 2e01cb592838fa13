package ocr

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// fakeRunner records invocations and replays canned output.
type fakeRunner struct {
	calls  [][]string
	stdout string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.stdout), []byte("stderr noise"), f.err
}

func newTestExtractor(r Runner) *Extractor {
	e := NewExtractor(Config{}, slog.Default())
	e.runner = r
	return e
}

func TestTesseractInvocation(t *testing.T) {
	fr := &fakeRunner{stdout: "Glucose 105\n"}
	e := newTestExtractor(fr)

	out, err := e.tesseract(context.Background(), "/tmp/scan.png")
	if err != nil {
		t.Fatalf("tesseract: %v", err)
	}
	if out != "Glucose 105\n" {
		t.Fatalf("out = %q", out)
	}

	if len(fr.calls) != 1 {
		t.Fatalf("calls = %v", fr.calls)
	}
	got := strings.Join(fr.calls[0], " ")
	want := "tesseract /tmp/scan.png stdout -l eng --psm 6"
	if got != want {
		t.Fatalf("invocation = %q, want %q", got, want)
	}
}

func TestTesseractErrorCarriesStderr(t *testing.T) {
	fr := &fakeRunner{err: errors.New("exit status 1")}
	e := newTestExtractor(fr)

	_, err := e.tesseract(context.Background(), "/tmp/scan.png")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "stderr noise") {
		t.Fatalf("err = %v, want stderr included", err)
	}
}

func TestExtractImageTextMissingFile(t *testing.T) {
	// preprocessing falls back to the original path, tesseract still runs
	fr := &fakeRunner{stdout: "HbA1c 5.8"}
	e := newTestExtractor(fr)

	out, err := e.ExtractImageText(context.Background(), "/no/such/file.png")
	if err != nil {
		t.Fatalf("ExtractImageText: %v", err)
	}
	if out != "HbA1c 5.8" {
		t.Fatalf("out = %q", out)
	}
	if len(fr.calls) != 1 || fr.calls[0][1] != "/no/such/file.png" {
		t.Fatalf("calls = %v", fr.calls)
	}
}

func TestNewExtractorDefaults(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	if e.cfg.Tesseract != "tesseract" || e.cfg.Pdftoppm != "pdftoppm" {
		t.Fatalf("binaries = %q, %q", e.cfg.Tesseract, e.cfg.Pdftoppm)
	}
	if e.cfg.TesseractLang != "eng" || e.cfg.PSM != 6 || e.cfg.DPI != 150 {
		t.Fatalf("cfg = %+v", e.cfg)
	}
}
