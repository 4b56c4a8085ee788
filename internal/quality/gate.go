// Package quality rejects images that are too dark, too flat, too small, or
// faceless before they reach the verification engine.
package quality

import (
	"context"

	dErrors "faceguard/pkg/domain-errors"
)

// DefaultAnalysisMaxSide bounds the image used for brightness and contrast
// sampling. Resolution is always taken from the original bounds.
const DefaultAnalysisMaxSide = 1024

// FaceDetector reports whether at least one face is present with at least
// minConfidence.
type FaceDetector interface {
	HasFace(ctx context.Context, image []byte, minConfidence float64) (bool, error)
}

// Gate evaluates images against fixed thresholds. It holds no mutable state
// and is safe for concurrent use.
type Gate struct {
	thresholds Thresholds
	detector   FaceDetector
	maxSide    int
}

type Option func(*Gate)

// WithAnalysisMaxSide sets the longest side used for pixel statistics.
// Zero or less samples every pixel.
func WithAnalysisMaxSide(n int) Option {
	return func(g *Gate) {
		g.maxSide = n
	}
}

func New(thresholds Thresholds, detector FaceDetector, opts ...Option) *Gate {
	g := &Gate{
		thresholds: thresholds,
		detector:   detector,
		maxSide:    DefaultAnalysisMaxSide,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Thresholds returns the configured minimums.
func (g *Gate) Thresholds() Thresholds {
	return g.thresholds
}

// Evaluate measures data and reports whether it passes. A failing image is a
// normal result, not an error. Undecodable input fails with an image-read
// error; a detector failure is an engine error.
func (g *Gate) Evaluate(ctx context.Context, data []byte) (Metrics, bool, error) {
	img, err := decode(data)
	if err != nil {
		return Metrics{}, false, err
	}

	bounds := img.Bounds()
	m := Metrics{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Resolution: min(bounds.Dx(), bounds.Dy()),
	}
	m.Brightness, m.Contrast = intensityStats(sample(img, g.maxSide))

	if g.detector != nil {
		hasFace, err := g.detector.HasFace(ctx, data, g.thresholds.MinFaceConfidence)
		if err != nil {
			return m, false, dErrors.Wrap(err, dErrors.CodeEngine, "face detection failed")
		}
		m.HasFace = hasFace
	}

	return m, g.thresholds.Pass(m), nil
}
