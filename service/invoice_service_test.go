package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atorhub/Anj-dual-v1/config"
	"github.com/atorhub/Anj-dual-v1/dto"
)

func testService() *InvoiceService {
	cfg := &config.Config{
		Tolerance:         decimal.RequireFromString("0.01"),
		MerchantScanDepth: 12,
	}
	return NewInvoiceService(nil, nil, nil, cfg)
}

func TestVerifyTextRunsFullPipeline(t *testing.T) {
	s := testService()

	text := strings.Join([]string{
		"Sunrise Traders",
		"Invoice No: 84321",
		"GSTIN: 27AAAPL1234C1Z5",
		"Date: 15/10/2025",
		"Widget A 2 160.00 320.00",
		"Widget B 3 90.00 270.00",
		"Total: 590.00",
	}, "\n")

	response := s.VerifyText(text)

	assert.Equal(t, dto.StatusVerified, response.Verification.Status)
	assert.Equal(t, "Sunrise Traders", response.Fields.Merchant)
	assert.Equal(t, "15/10/2025", response.Fields.Date)
	assert.Len(t, response.Items, 2)
	assert.Equal(t, 100, response.Confidence.Value)
	assert.Equal(t, "good", response.SignalQuality)
	assert.NotEmpty(t, response.ProcessedAt)
	assert.Empty(t, response.HistoryID)
}

func TestVerifyTextSurfacesTaxBreakdown(t *testing.T) {
	s := testService()

	text := strings.Join([]string{
		"Sunrise Traders",
		"Subtotal: 500.00",
		"CGST: 45.00",
		"SGST: 45.00",
		"Total: 590.00",
	}, "\n")

	response := s.VerifyText(text)

	require.NotNil(t, response.Tax.CGST)
	assert.Equal(t, "45.00", response.Tax.CGST.StringFixed(2))
	require.NotNil(t, response.Tax.SGST)
	assert.Equal(t, "45.00", response.Tax.SGST.StringFixed(2))
}

func TestMergeExtractionPassesPrefersMateriallyLongerPass(t *testing.T) {
	long := strings.Repeat("Sunrise Traders line\n", 10)
	short := "Sunrise Traders"

	assert.Equal(t, strings.TrimSpace(long), mergeExtractionPasses(long, short))
	assert.Equal(t, strings.TrimSpace(long), mergeExtractionPasses(short, long))
}

func TestMergeExtractionPassesUnionsComparablePasses(t *testing.T) {
	a := "Sunrise Traders\nTotal: 590.00"
	b := "Sunrise Traders\nDate: 15/10/2025"

	merged := mergeExtractionPasses(a, b)

	assert.Equal(t, "Sunrise Traders\nTotal: 590.00\nDate: 15/10/2025", merged)
}

func TestMergeExtractionPassesHandlesEmptyPass(t *testing.T) {
	assert.Equal(t, "Total: 590.00", mergeExtractionPasses("", "Total: 590.00"))
	assert.Equal(t, "Total: 590.00", mergeExtractionPasses("Total: 590.00", ""))
	assert.Equal(t, "", mergeExtractionPasses("", ""))
}

func TestFlattenTextLinesGroupsByRowAndOrdersByColumn(t *testing.T) {
	fragments := []dto.TextLine{
		{Text: "320.00", X: 400, Y: 700},
		{Text: "Widget", X: 10, Y: 700.2},
		{Text: "2", X: 200, Y: 699.8},
		{Text: "Sunrise Traders", X: 10, Y: 780},
		{Text: "Total: 320.00", X: 10, Y: 600},
	}

	text := FlattenTextLines(fragments)

	assert.Equal(t, "Sunrise Traders\nWidget 2 320.00\nTotal: 320.00", text)
}

func TestFlattenTextLinesEmptyInput(t *testing.T) {
	assert.Equal(t, "", FlattenTextLines(nil))
}
