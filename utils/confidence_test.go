package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/atorhub/Anj-dual-v1/dto"
)

func TestScoreAllFieldsPresentIsHigh(t *testing.T) {
	total := decimal.RequireFromString("590.00")
	fields := dto.ParsedInvoiceFields{
		Merchant:      "Sunrise Traders",
		Date:          "15/10/2025",
		DeclaredTotal: &total,
	}

	score := Score(fields, "Sunrise Traders GSTIN 27AAAPL1234C1Z5 Total 590.00")

	assert.Equal(t, 100, score.Value)
	assert.Equal(t, "High", score.Label)
	assert.Contains(t, score.Reasons, "GSTIN marker present")
}

func TestScoreHalfFieldsIsMedium(t *testing.T) {
	fields := dto.ParsedInvoiceFields{Merchant: "Sunrise Traders", Date: "15/10/2025"}

	score := Score(fields, "Sunrise Traders 15/10/2025")

	assert.Equal(t, 50, score.Value)
	assert.Equal(t, "Medium", score.Label)
	assert.Contains(t, score.Reasons, "invoice total missing")
}

func TestScoreNothingFoundIsLow(t *testing.T) {
	score := Score(dto.ParsedInvoiceFields{}, "illegible scan")

	assert.Equal(t, 0, score.Value)
	assert.Equal(t, "Low", score.Label)
	assert.Len(t, score.Reasons, 4)
}

func TestScoreAcceptsGSTNoMarker(t *testing.T) {
	score := Score(dto.ParsedInvoiceFields{}, "GST No: 27AAAPL1234C1Z5")

	assert.Equal(t, 25, score.Value)
	assert.Contains(t, score.Reasons, "GSTIN marker present")
}

func TestSignalQualityShortTextIsPoor(t *testing.T) {
	assert.Equal(t, "poor", ClassifySignalQuality("Total 590"))
}

func TestSignalQualityNoisyTextIsPoor(t *testing.T) {
	noisy := "Sunr|se Tr@ders #@!~ |nv*|ce $%^& t*t@| 590 #@! %^& *|# @!~ |*#"
	assert.Equal(t, "poor", ClassifySignalQuality(noisy))
}

func TestSignalQualityNoDigitsIsPoor(t *testing.T) {
	text := "Sunrise Traders invoice with no amounts anywhere on the page at all"
	assert.Equal(t, "poor", ClassifySignalQuality(text))
}

func TestSignalQualityCleanInvoiceIsGood(t *testing.T) {
	text := "Sunrise Traders\nInvoice No: 84321\nWidget A 2 160.00 320.00\nTotal: 590.00"
	assert.Equal(t, "good", ClassifySignalQuality(text))
}
