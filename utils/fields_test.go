package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerchantSkipsMetadataHeader(t *testing.T) {
	lines := []string{
		"Tax Invoice",
		"Invoice No: 84321",
		"GSTIN: 22AAAAA0000A1Z5",
		"Address: 12 MG Road Bengaluru",
		"Phone: 98765 43210",
		"Email: billing@example.com",
		"Receipt Date: 15/10/2025",
		"BILL OF SUPPLY",
		"Sunrise Traders",
	}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	assert.Equal(t, "Sunrise Traders", fields.Merchant)
}

func TestMerchantSkipsLongAllCapsAndNumericLines(t *testing.T) {
	lines := []string{
		"STATEMENT OF CHARGES",
		"984211 120 5566",
		"22 11 44 55 66 77",
		"Lotus Hardware",
	}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	assert.Equal(t, "Lotus Hardware", fields.Merchant)
}

func TestMerchantNeverGuessed(t *testing.T) {
	lines := []string{"Tax Invoice", "GSTIN: 22AAAAA0000A1Z5"}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	assert.Empty(t, fields.Merchant)
}

func TestDateExtraction(t *testing.T) {
	lines := []string{"Sunrise Traders", "Dated 15/10/2025", "Total: 100.00"}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	assert.Equal(t, "15/10/2025", fields.Date)
}

func TestDateRejectsGSTContext(t *testing.T) {
	// The first candidate sits next to a GST marker and must be skipped in
	// favor of the later clean one.
	lines := []string{"GST No 12/01/2023", "Issued on 15/10/2025"}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	assert.Equal(t, "15/10/2025", fields.Date)
}

func TestDateRejectsLongDigitNeighborhood(t *testing.T) {
	lines := []string{
		"Ref 12/01/2023 9876543210123",
		"Delivery note for order goods",
		"Printed 15/10/2025",
	}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	assert.Equal(t, "15/10/2025", fields.Date)
}

func TestDeclaredTotalPrefersTotalLabeledSummaryRow(t *testing.T) {
	lines := []string{
		"Subtotal: 500.00",
		"CGST: 45.00",
		"Total: 590.00",
	}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	require.NotNil(t, fields.DeclaredTotal)
	assert.Equal(t, "590.00", fields.DeclaredTotal.StringFixed(2))
}

func TestDeclaredTotalFallsBackToAnySummaryValue(t *testing.T) {
	lines := []string{"CGST: 45.00", "SGST: 45.00"}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	require.NotNil(t, fields.DeclaredTotal)
	assert.Equal(t, "45.00", fields.DeclaredTotal.StringFixed(2))
}

func TestDeclaredTotalScoredStrategyPicksLargestQualifier(t *testing.T) {
	// No summary rows at all: keyword-scored candidates take over and the
	// largest surviving value wins.
	lines := []string{
		"Sunrise Traders",
		"Item one 120.00",
		"Item two 80.00",
		"Amount 200.00",
	}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	require.NotNil(t, fields.DeclaredTotal)
	assert.Equal(t, "200.00", fields.DeclaredTotal.StringFixed(2))
}

func TestDeclaredTotalScoredStrategyRejectsLongIntegers(t *testing.T) {
	lines := []string{
		"Sunrise Traders",
		"Contact 9876543210",
	}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	assert.Nil(t, fields.DeclaredTotal)
}

func TestDeclaredTotalAbsentStaysNil(t *testing.T) {
	lines := []string{"Sunrise Traders", "Thank you"}

	fields := ExtractFields(lines, ClassifyLines(lines), 12)

	assert.Nil(t, fields.DeclaredTotal)
}

func TestExtractInvoiceEndToEnd(t *testing.T) {
	fields := ExtractInvoice("Sunrise Traders\nDated 15/10/2025\nTotal: 320.00")

	assert.Equal(t, "Sunrise Traders", fields.Merchant)
	assert.Equal(t, "15/10/2025", fields.Date)
	require.NotNil(t, fields.DeclaredTotal)
	assert.Equal(t, "320.00", fields.DeclaredTotal.StringFixed(2))
}

func TestExtractTaxBreakdown(t *testing.T) {
	bd, warnings := ExtractTaxBreakdown("Subtotal: 500.00\nCGST: 45.00\nSGST: 45.00\nTotal: 590.00")

	require.NotNil(t, bd.CGST)
	require.NotNil(t, bd.SGST)
	assert.Nil(t, bd.IGST)
	assert.Nil(t, bd.GST)
	assert.Equal(t, "45.00", bd.CGST.StringFixed(2))
	assert.Empty(t, warnings)
}

func TestExtractTaxBreakdownUnparseableTaxWarns(t *testing.T) {
	bd, warnings := ExtractTaxBreakdown("All prices include tax where applicable")

	assert.True(t, bd.Empty())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "not calculable")
}
