package engine

import (
	"encoding/json"
	"fmt"
	"math"

	dErrors "faceguard/pkg/domain-errors"
)

// DefaultDistanceMetric is reported when the engine omits its metric.
const DefaultDistanceMetric = "cosine"

// Verification is a validated /verify result.
type Verification struct {
	Verified        bool    `json:"verified"`
	Distance        float64 `json:"distance"`
	Threshold       float64 `json:"threshold"`
	DistanceMetric  string  `json:"distance_metric"`
	Model           string  `json:"model"`
	DetectorBackend string  `json:"detector_backend"`
}

// Analysis is a validated /analyze result for the first face in an image.
type Analysis struct {
	Age             float64 `json:"age"`
	DominantGender  string  `json:"dominant_gender"`
	DominantEmotion string  `json:"dominant_emotion"`
}

// Face is one detection from /detect.
type Face struct {
	Confidence float64 `json:"confidence"`
}

type rawVerification struct {
	Verified        *bool    `json:"verified"`
	Distance        *float64 `json:"distance"`
	Threshold       *float64 `json:"threshold"`
	DistanceMetric  string   `json:"distance_metric"`
	Model           string   `json:"model"`
	DetectorBackend string   `json:"detector_backend"`
}

type rawAnalysis struct {
	Age             *float64 `json:"age"`
	DominantGender  *string  `json:"dominant_gender"`
	DominantEmotion *string  `json:"dominant_emotion"`
}

type rawAnalyzeResponse struct {
	Results []rawAnalysis `json:"results"`
}

type rawDetectResponse struct {
	Faces []struct {
		Confidence *float64 `json:"confidence"`
	} `json:"faces"`
}

func malformed(format string, args ...any) error {
	return dErrors.New(dErrors.CodeEngine, "malformed engine response: "+fmt.Sprintf(format, args...))
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// ParseVerification validates a raw /verify body. Every numeric field must
// be present and finite before any arithmetic is done on it.
func ParseVerification(body []byte) (Verification, error) {
	var raw rawVerification
	if err := json.Unmarshal(body, &raw); err != nil {
		return Verification{}, dErrors.Wrap(err, dErrors.CodeEngine, "malformed engine response: invalid JSON")
	}
	switch {
	case raw.Verified == nil:
		return Verification{}, malformed("missing verified")
	case raw.Distance == nil:
		return Verification{}, malformed("missing distance")
	case raw.Threshold == nil:
		return Verification{}, malformed("missing threshold")
	case !finiteNonNegative(*raw.Distance):
		return Verification{}, malformed("distance %v out of range", *raw.Distance)
	case !finiteNonNegative(*raw.Threshold):
		return Verification{}, malformed("threshold %v out of range", *raw.Threshold)
	}
	v := Verification{
		Verified:        *raw.Verified,
		Distance:        *raw.Distance,
		Threshold:       *raw.Threshold,
		DistanceMetric:  raw.DistanceMetric,
		Model:           raw.Model,
		DetectorBackend: raw.DetectorBackend,
	}
	if v.DistanceMetric == "" {
		v.DistanceMetric = DefaultDistanceMetric
	}
	return v, nil
}

// ParseAnalysis validates a raw /analyze body and returns the first face.
func ParseAnalysis(body []byte) (Analysis, error) {
	var raw rawAnalyzeResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Analysis{}, dErrors.Wrap(err, dErrors.CodeEngine, "malformed engine response: invalid JSON")
	}
	if len(raw.Results) == 0 {
		return Analysis{}, malformed("no faces analyzed")
	}
	first := raw.Results[0]
	switch {
	case first.Age == nil:
		return Analysis{}, malformed("missing age")
	case !finiteNonNegative(*first.Age):
		return Analysis{}, malformed("age %v out of range", *first.Age)
	case first.DominantGender == nil:
		return Analysis{}, malformed("missing dominant_gender")
	case first.DominantEmotion == nil:
		return Analysis{}, malformed("missing dominant_emotion")
	}
	return Analysis{
		Age:             *first.Age,
		DominantGender:  *first.DominantGender,
		DominantEmotion: *first.DominantEmotion,
	}, nil
}

// ParseFaces validates a raw /detect body.
func ParseFaces(body []byte) ([]Face, error) {
	var raw rawDetectResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEngine, "malformed engine response: invalid JSON")
	}
	faces := make([]Face, 0, len(raw.Faces))
	for i, f := range raw.Faces {
		if f.Confidence == nil || !finiteNonNegative(*f.Confidence) {
			return nil, malformed("face %d has no valid confidence", i)
		}
		faces = append(faces, Face{Confidence: *f.Confidence})
	}
	return faces, nil
}
