package utils

import (
	"regexp"
	"strings"

	"github.com/atorhub/Anj-dual-v1/dto"
)

var (
	reNoiseChar = regexp.MustCompile(`[^a-zA-Z0-9\s.,₹]`)
	reUpper     = regexp.MustCompile(`[A-Z]`)
)

// Score rates how many of the expected header fields were found, 25 points
// each: merchant, date, declared total, and a GSTIN-like marker in the text.
// The score informs the reviewer alongside the verdict and never alters the
// verification result.
func Score(fields dto.ParsedInvoiceFields, text string) dto.ConfidenceScore {
	score := dto.ConfidenceScore{Reasons: []string{}}
	lower := strings.ToLower(text)

	add := func(present bool, found, missing string) {
		if present {
			score.Value += 25
			score.Reasons = append(score.Reasons, found)
		} else {
			score.Reasons = append(score.Reasons, missing)
		}
	}

	add(fields.Merchant != "", "merchant name found", "merchant name missing")
	add(fields.Date != "", "date found", "date missing")
	add(fields.DeclaredTotal != nil, "invoice total found", "invoice total missing")
	add(strings.Contains(lower, "gstin") || strings.Contains(lower, "gst no"),
		"GSTIN marker present", "no GSTIN marker")

	switch {
	case score.Value >= 75:
		score.Label = "High"
	case score.Value >= 50:
		score.Label = "Medium"
	default:
		score.Label = "Low"
	}
	return score
}

// ClassifySignalQuality gives a coarse, observational read of the raw OCR
// signal: short text, a high ratio of noise characters, or the absence of
// digits or capitals all read as "poor".
func ClassifySignalQuality(text string) string {
	if len(text) < 50 {
		return "poor"
	}
	noise := len(reNoiseChar.FindAllString(text, -1))
	if float64(noise)/float64(len(text)) > 0.15 {
		return "poor"
	}
	if !reDigit.MatchString(text) || !reUpper.MatchString(text) {
		return "poor"
	}
	return "good"
}
