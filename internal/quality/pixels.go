package quality

import (
	"bytes"
	"fmt"
	"image"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	dErrors "faceguard/pkg/domain-errors"
)

// maxPixels rejects images whose header claims an absurd pixel count before
// any pixel buffer is allocated.
const maxPixels = 100_000_000

// decode turns raw bytes into a pixel grid. Anything that cannot be decoded
// is an image-read error.
func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeImageRead, "image is empty")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeImageRead, "could not decode image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, dErrors.New(dErrors.CodeImageRead, "image has no pixels")
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, dErrors.New(dErrors.CodeImageRead, fmt.Sprintf("image dimensions %dx%d exceed limit", cfg.Width, cfg.Height))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeImageRead, "could not decode image")
	}
	return img, nil
}

// sample returns an RGBA copy of img, downscaled so neither side exceeds
// maxSide. maxSide <= 0 disables downscaling.
func sample(img image.Image, maxSide int) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}

	nw, nh := maxSide, maxSide
	if w > h {
		nh = max(1, int(float64(h)*float64(maxSide)/float64(w)))
	} else {
		nw = max(1, int(float64(w)*float64(maxSide)/float64(h)))
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// intensityStats returns the mean and population standard deviation of every
// colour channel value (0-255) across all pixels. Alpha is ignored.
func intensityStats(img *image.RGBA) (mean, stddev float64) {
	b := img.Bounds()
	var sum, sumSq float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i+4 <= len(row); i += 4 {
			for _, c := range row[i : i+3] {
				v := float64(c)
				sum += v
				sumSq += v * v
			}
			n += 3
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean = sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}
