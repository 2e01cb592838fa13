package ocr

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// light background with a dark band, enough contrast for a
			// meaningful Otsu threshold
			c := color.RGBA{230, 230, 230, 255}
			if y > h/3 && y < 2*h/3 {
				c = color.RGBA{20, 20, 20, 255}
			}
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestPreprocessImageUpscalesSmallScans(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, 600, 400)

	out := PreprocessImage(src, dir)
	if out == src {
		t.Fatal("preprocessing fell back to the source image")
	}

	img := decodePNG(t, out)
	if got := img.Bounds().Dx(); got != 900 {
		t.Fatalf("width = %d, want 900 (600 x 1.5)", got)
	}
}

func TestPreprocessImageCapsHugePhotos(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, 3000, 100)

	out := PreprocessImage(src, dir)
	img := decodePNG(t, out)
	if got := img.Bounds().Dx(); got != 2500 {
		t.Fatalf("width = %d, want cap 2500", got)
	}
}

func TestPreprocessImageLeavesMidSizeAlone(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, 1200, 200)

	out := PreprocessImage(src, dir)
	img := decodePNG(t, out)
	if got := img.Bounds().Dx(); got != 1200 {
		t.Fatalf("width = %d, want unchanged 1200", got)
	}
}

func TestPreprocessImageBinarizes(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, 1200, 90)

	out := PreprocessImage(src, dir)
	img := decodePNG(t, out)

	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("output is %T, want *image.Gray", img)
	}
	for _, px := range gray.Pix {
		if px != 0 && px != 255 {
			t.Fatalf("pixel %d is not binarized", px)
		}
	}
}

// Unreadable input falls back to the original path so tesseract can
// still try it.
func TestPreprocessImageFallsBackOnGarbage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "not-an-image.png")
	if err := os.WriteFile(src, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out := PreprocessImage(src, dir); out != src {
		t.Fatalf("out = %q, want fallback to source", out)
	}
}
