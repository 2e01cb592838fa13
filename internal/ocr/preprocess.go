package ocr

import (
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	_ "image/jpeg" // register decoders for uploaded formats
	_ "image/png"
)

const (
	// below this width OCR accuracy suffers; above the cap CPU does
	minReadableWidth = 1000
	maxWidth         = 2500
	upscaleFactor    = 1.5
)

// PreprocessImage decodes src and normalizes it for OCR: grayscale,
// width-based rescale (small scans are upscaled ×1.5, huge phone photos
// are capped at 2500px wide, anything in between is left alone) and
// Otsu binarization. The result is written as a PNG under dir and its
// path returned.
//
// Preprocessing is best effort: any failure returns src unchanged and
// lets tesseract try the original file.
func PreprocessImage(src, dir string) string {
	f, err := os.Open(src)
	if err != nil {
		return src
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return src
	}

	gray := toGray(img)
	switch w := gray.Bounds().Dx(); {
	case w == 0:
		return src
	case w < minReadableWidth:
		gray = scaleGray(gray, upscaleFactor)
	case w > maxWidth:
		gray = scaleGray(gray, float64(maxWidth)/float64(w))
	}
	bin := binarizeOtsu(gray)

	out := filepath.Join(dir, "preprocessed.png")
	g, err := os.Create(out)
	if err != nil {
		return src
	}
	defer g.Close()
	if err := png.Encode(g, bin); err != nil {
		return src
	}
	return out
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

func scaleGray(g *image.Gray, factor float64) *image.Gray {
	b := g.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if w < 1 || h < 1 {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), g, b, draw.Src, nil)
	return dst
}

// binarizeOtsu applies a global threshold chosen by Otsu's method
// (maximum between-class variance over the gray histogram).
func binarizeOtsu(g *image.Gray) *image.Gray {
	var hist [256]int
	for _, px := range g.Pix {
		hist[px]++
	}
	total := len(g.Pix)
	if total == 0 {
		return g
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB, maxVar float64
	threshold := 127
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = t
		}
	}

	out := image.NewGray(g.Bounds())
	for i, px := range g.Pix {
		if int(px) > threshold {
			out.Pix[i] = 255
		} else {
			out.Pix[i] = 0
		}
	}
	return out
}
