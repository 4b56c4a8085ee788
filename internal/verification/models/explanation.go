package models

import (
	"fmt"
	"math"
	"strconv"
)

// CloseAgeYears is the largest age difference still described as very close.
const CloseAgeYears = 5

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ConfidencePercent converts an engine distance to a 0-100 similarity.
func ConfidencePercent(distance float64) float64 {
	return Round2((1 - distance) * 100)
}

// ThresholdPercent converts an engine distance threshold to the similarity
// percentage a match must reach.
func ThresholdPercent(threshold float64) float64 {
	return Round2((1 - threshold) * 100)
}

// Explain narrates a verdict. The output depends only on its inputs.
func Explain(verified bool, confidence, threshold, ageDiff float64) string {
	matching, similarity, comparison := "not matching", "weak", "does not exceed"
	if verified {
		matching, similarity, comparison = "matching", "strong", "significantly exceeds"
	}
	ages := "different"
	if ageDiff <= CloseAgeYears {
		ages = "very close"
	}
	c := formatPercent(confidence)
	return fmt.Sprintf(
		"The images are %s because the facial features show %s similarity with a confidence score of %s%%. "+
			"This is evidenced by: the estimated ages are %s (difference of %s years). "+
			"The similarity score (%s%%) %s the required threshold of %s%%.",
		matching, similarity, c,
		ages, strconv.FormatFloat(ageDiff, 'f', -1, 64),
		c, comparison, formatPercent(threshold),
	)
}

// formatPercent keeps one decimal on whole numbers so 80 reads as 80.0.
func formatPercent(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
