package utils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atorhub/Anj-dual-v1/dto"
)

var (
	// Lines matching any summary keyword are excluded from item-total
	// accumulation entirely. A line matching both an item shape and a summary
	// keyword is always SUMMARY, never ITEM, to prevent double-counting.
	reSummaryKeyword = regexp.MustCompile(`\b(?:sub ?total|grand total|round off|amount due|payable|balance|total|tax|gst|cgst|sgst|igst|net)\b`)

	reMetadataKeyword = regexp.MustCompile(`\b(?:invoice|date|gstin|address|phone|tel|email|bill|receipt)\b`)

	// Two-decimal money form, optional thousands separators.
	reMoneyToken   = regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}|\d+\.\d{2}`)
	reLooseNumber  = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
	reDigitCluster = regexp.MustCompile(`\d+`)
)

// ClassifyLines labels every normalized line as SUMMARY, ITEM, METADATA or
// UNKNOWN and extracts the summary value where applicable.
func ClassifyLines(lines []string) []dto.ClassifiedLine {
	out := make([]dto.ClassifiedLine, 0, len(lines))
	for i, line := range lines {
		out = append(out, classifyLine(line, i))
	}
	return out
}

func classifyLine(line string, index int) dto.ClassifiedLine {
	cl := dto.ClassifiedLine{Text: line, LineIndex: index, Kind: dto.KindUnknown}
	lower := strings.ToLower(line)

	switch {
	case reSummaryKeyword.MatchString(lower):
		cl.Kind = dto.KindSummary
		cl.SummaryValue = lastAmountOnLine(line)
	case len(reDigitCluster.FindAllString(line, -1)) >= 2:
		cl.Kind = dto.KindItem
	case reMetadataKeyword.MatchString(lower):
		cl.Kind = dto.KindMetadata
	}
	return cl
}

// lastAmountOnLine returns the last decimal-formatted number on the line,
// preferring the two-decimal money form over bare integers.
func lastAmountOnLine(line string) *decimal.Decimal {
	matches := reMoneyToken.FindAllString(line, -1)
	if len(matches) == 0 {
		matches = reLooseNumber.FindAllString(line, -1)
	}
	for i := len(matches) - 1; i >= 0; i-- {
		if d, ok := parseAmount(matches[i]); ok {
			return &d
		}
	}
	return nil
}

// parseAmount parses a currency amount: the rupee symbol and common currency
// markers are stripped, commas are treated as thousands separators, and the
// OCR confusions O->0 and l/I->1 are repaired inside the token.
func parseAmount(tok string) (decimal.Decimal, bool) {
	tok = strings.TrimSpace(tok)
	tok = strings.NewReplacer(
		"₹", "", "Rs.", "", "Rs", "", "INR", "", "rs.", "", "rs", "",
		"O", "0", "o", "0", "l", "1", "I", "1",
		",", "",
	).Replace(tok)
	tok = strings.Trim(tok, " :-.")
	if tok == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
