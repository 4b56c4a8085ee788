package quality

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	dErrors "faceguard/pkg/domain-errors"
)

type detectorFunc func(ctx context.Context, image []byte, minConfidence float64) (bool, error)

func (f detectorFunc) HasFace(ctx context.Context, image []byte, minConfidence float64) (bool, error) {
	return f(ctx, image, minConfidence)
}

func faceFound(context.Context, []byte, float64) (bool, error) { return true, nil }
func noFace(context.Context, []byte, float64) (bool, error)    { return false, nil }

// checkerboard alternates gray levels a and b, giving mean (a+b)/2 and
// standard deviation |a-b|/2.
func checkerboard(w, h int, a, b uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := a
			if (x+y)%2 == 1 {
				v = b
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func solid(w, h int, v uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 0xff
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEvaluateGoodImage(t *testing.T) {
	gate := New(DefaultThresholds(), detectorFunc(faceFound))

	m, pass, err := gate.Evaluate(context.Background(), encodePNG(t, checkerboard(256, 300, 60, 200)))

	require.NoError(t, err)
	assert.True(t, pass)
	assert.InDelta(t, 130.0, m.Brightness, 1e-9)
	assert.InDelta(t, 70.0, m.Contrast, 1e-9)
	assert.True(t, m.HasFace)
	assert.Equal(t, 256, m.Resolution)
	assert.Equal(t, 256, m.Width)
	assert.Equal(t, 300, m.Height)
}

func TestLowResolutionAlwaysFails(t *testing.T) {
	gate := New(DefaultThresholds(), detectorFunc(faceFound))

	m, pass, err := gate.Evaluate(context.Background(), encodePNG(t, checkerboard(223, 800, 60, 250)))

	require.NoError(t, err)
	assert.False(t, pass)
	assert.Equal(t, 223, m.Resolution)
	assert.Greater(t, m.Brightness, 40.0)
	assert.Greater(t, m.Contrast, 20.0)
}

func TestNoFaceAlwaysFails(t *testing.T) {
	gate := New(DefaultThresholds(), detectorFunc(noFace))

	m, pass, err := gate.Evaluate(context.Background(), encodePNG(t, checkerboard(400, 400, 60, 200)))

	require.NoError(t, err)
	assert.False(t, pass)
	assert.False(t, m.HasFace)
}

func TestFlatImageFailsContrast(t *testing.T) {
	gate := New(DefaultThresholds(), detectorFunc(faceFound))

	m, pass, err := gate.Evaluate(context.Background(), encodePNG(t, solid(300, 300, 128)))

	require.NoError(t, err)
	assert.False(t, pass)
	assert.InDelta(t, 128.0, m.Brightness, 1e-9)
	assert.InDelta(t, 0.0, m.Contrast, 1e-9)
}

func TestDetectorReceivesConfiguredConfidence(t *testing.T) {
	thresholds := DefaultThresholds()
	thresholds.MinFaceConfidence = 0.8
	var got float64
	gate := New(thresholds, detectorFunc(func(_ context.Context, _ []byte, c float64) (bool, error) {
		got = c
		return true, nil
	}))

	_, _, err := gate.Evaluate(context.Background(), encodePNG(t, checkerboard(224, 224, 60, 200)))
	require.NoError(t, err)
	assert.Equal(t, 0.8, got)
}

func TestLargeImageIsDownscaledForSampling(t *testing.T) {
	gate := New(DefaultThresholds(), detectorFunc(faceFound), WithAnalysisMaxSide(256))

	m, _, err := gate.Evaluate(context.Background(), encodePNG(t, solid(2048, 300, 90)))

	require.NoError(t, err)
	assert.Equal(t, 300, m.Resolution, "resolution comes from the original image")
	assert.Equal(t, 2048, m.Width)
	assert.InDelta(t, 90.0, m.Brightness, 1.5)
}

func TestDecodesBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, checkerboard(240, 240, 60, 200)))
	gate := New(DefaultThresholds(), detectorFunc(faceFound))

	_, pass, err := gate.Evaluate(context.Background(), buf.Bytes())

	require.NoError(t, err)
	assert.True(t, pass)
}

func TestUndecodableInputIsImageReadError(t *testing.T) {
	gate := New(DefaultThresholds(), detectorFunc(faceFound))

	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not an image"),
		"truncated png": func() []byte {
			b := encodePNG(t, checkerboard(300, 300, 60, 200))
			return b[:len(b)/2]
		}(),
	} {
		t.Run(name, func(t *testing.T) {
			_, pass, err := gate.Evaluate(context.Background(), data)
			require.Error(t, err)
			assert.False(t, pass)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeImageRead))
		})
	}
}

func TestDetectorFailureIsEngineError(t *testing.T) {
	gate := New(DefaultThresholds(), detectorFunc(func(context.Context, []byte, float64) (bool, error) {
		return false, errors.New("detector unreachable")
	}))

	_, pass, err := gate.Evaluate(context.Background(), encodePNG(t, checkerboard(300, 300, 60, 200)))

	require.Error(t, err)
	assert.False(t, pass)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeEngine))
}

func TestThresholdsPass(t *testing.T) {
	th := DefaultThresholds()
	good := Metrics{Brightness: 41, Contrast: 21, HasFace: true, Resolution: 224}

	assert.True(t, th.Pass(good))

	atBrightness := good
	atBrightness.Brightness = 40
	assert.False(t, th.Pass(atBrightness), "brightness must exceed the minimum")

	atContrast := good
	atContrast.Contrast = 20
	assert.False(t, th.Pass(atContrast), "contrast must exceed the minimum")

	smaller := good
	smaller.Resolution = 223
	assert.False(t, th.Pass(smaller))

	faceless := good
	faceless.HasFace = false
	assert.False(t, th.Pass(faceless))
}
