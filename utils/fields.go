package utils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atorhub/Anj-dual-v1/dto"
)

// DefaultMerchantScanDepth is how many leading lines the merchant scan
// inspects when the caller does not configure one.
const DefaultMerchantScanDepth = 12

const (
	minMerchantLen = 3
	maxMerchantLen = 40
)

var (
	reGenericLine = regexp.MustCompile(`(?i)invoice|tax|receipt|bill|gst|address|tel|phone|email`)
	reAnyLetter   = regexp.MustCompile(`[A-Za-z]`)
	reDigit       = regexp.MustCompile(`\d`)
	rePureNumeric = regexp.MustCompile(`^[\d\s.,:/₹-]+$`)

	reNumericDate   = regexp.MustCompile(`\b\d{1,2}[-/. ]\d{1,2}[-/. ]\d{2,4}\b`)
	reMonthNameDate = regexp.MustCompile(`\b\d{1,2} [A-Za-z]{3,9} \d{2,4}\b`)
	reLongDigitRun  = regexp.MustCompile(`\d{10,}`)

	reTotalKeyword = regexp.MustCompile(`\b(?:total|payable|amount|net|grand|sum)\b`)
	reTotalRow     = regexp.MustCompile(`\b(?:total|payable|amount due)\b`)
	reAmountToken  = regexp.MustCompile(`(?:₹|Rs\.?|INR)?\s*([\d.,]{2,})`)

	reTaxAmount = map[string]*regexp.Regexp{
		"cgst": regexp.MustCompile(`(?i)\bCGST\s*[:\-]?\s*(?:₹|Rs\.?|INR)?\s*([\d.,]+)`),
		"sgst": regexp.MustCompile(`(?i)\bSGST\s*[:\-]?\s*(?:₹|Rs\.?|INR)?\s*([\d.,]+)`),
		"igst": regexp.MustCompile(`(?i)\bIGST\s*[:\-]?\s*(?:₹|Rs\.?|INR)?\s*([\d.,]+)`),
		"gst":  regexp.MustCompile(`(?i)\bGST\s*[:\-]?\s*(?:₹|Rs\.?|INR)?\s*([\d.,]+)`),
	}
)

// ExtractFields derives merchant, date and declared total from classified
// lines. Fields that cannot be extracted stay empty; the declared total is
// nil when absent, never zero.
func ExtractFields(lines []string, classified []dto.ClassifiedLine, merchantScanDepth int) dto.ParsedInvoiceFields {
	return dto.ParsedInvoiceFields{
		Merchant:      extractMerchant(lines, merchantScanDepth),
		Date:          extractDate(strings.Join(lines, "\n")),
		DeclaredTotal: extractDeclaredTotal(lines, classified),
	}
}

// ExtractInvoice runs classification and field extraction over cleaned text.
// It is the pure extract entry point for callers that already hold text.
func ExtractInvoice(cleanedText string) dto.ParsedInvoiceFields {
	lines := splitLines(cleanedText)
	return ExtractFields(lines, ClassifyLines(lines), DefaultMerchantScanDepth)
}

// extractMerchant scans the leading lines, skipping anything that looks like
// boilerplate: generic invoice keywords, numeric-heavy lines, lines outside a
// sane length window, and long ALL-CAPS header lines. The first survivor with
// at least one letter wins; when none survives the merchant stays empty.
func extractMerchant(lines []string, depth int) string {
	if depth < 8 {
		depth = 8
	}
	if depth > 20 {
		depth = 20
	}
	if depth > len(lines) {
		depth = len(lines)
	}

	for i := 0; i < depth; i++ {
		line := strings.TrimSpace(lines[i])
		if len(line) < minMerchantLen || len(line) > maxMerchantLen {
			continue
		}
		if reGenericLine.MatchString(line) {
			continue
		}
		if rePureNumeric.MatchString(line) {
			continue
		}
		if len(reDigit.FindAllString(line, -1)) > 5 {
			continue
		}
		if len(line) > 10 && isAllCaps(line) {
			continue
		}
		if reAnyLetter.MatchString(line) {
			return line
		}
	}
	return ""
}

func isAllCaps(line string) bool {
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// extractDate matches numeric and month-name date forms anywhere in the text.
// A candidate is discarded when its surrounding context mentions GST or holds
// a 10+ digit run, both signs of a tax id misread as a date. The first
// survivor in document order wins.
func extractDate(text string) string {
	for _, re := range []*regexp.Regexp{reNumericDate, reMonthNameDate} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			start := loc[0] - 20
			if start < 0 {
				start = 0
			}
			end := loc[1] + 20
			if end > len(text) {
				end = len(text)
			}
			context := text[start:end]
			if strings.Contains(strings.ToLower(context), "gst") {
				continue
			}
			if reLongDigitRun.MatchString(context) {
				continue
			}
			return text[loc[0]:loc[1]]
		}
	}
	return ""
}

// extractDeclaredTotal prefers the summary-row strategy: the value of the
// last SUMMARY line labeled as a total, falling back to any SUMMARY value.
// Without summary rows it falls back to keyword-scored numeric candidates.
func extractDeclaredTotal(lines []string, classified []dto.ClassifiedLine) *decimal.Decimal {
	var anySummary *decimal.Decimal
	var totalRow *decimal.Decimal
	for _, cl := range classified {
		if cl.Kind != dto.KindSummary || cl.SummaryValue == nil {
			continue
		}
		anySummary = cl.SummaryValue
		if reTotalRow.MatchString(strings.ToLower(cl.Text)) {
			totalRow = cl.SummaryValue
		}
	}
	if totalRow != nil {
		return totalRow
	}
	if anySummary != nil {
		return anySummary
	}
	return scoreTotalCandidates(lines)
}

// scoreTotalCandidates implements the keyword-scored strategy: every numeric
// token is scored by keyword presence, decimal form and document position;
// long undecimaled integers (ids, phone numbers) are penalized out. Among
// candidates scoring above 20, the largest value wins.
func scoreTotalCandidates(lines []string) *decimal.Decimal {
	type candidate struct {
		value decimal.Decimal
		score int
	}
	var candidates []candidate

	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, m := range reAmountToken.FindAllStringSubmatch(line, -1) {
			raw := m[1]
			val, ok := parseAmount(raw)
			if !ok || !val.IsPositive() {
				continue
			}
			score := 0
			if reTotalKeyword.MatchString(lower) {
				score += 50
			}
			if strings.Contains(raw, ".") {
				score += 20
			}
			if i > len(lines)*6/10 {
				score += 30
			}
			if len(reDigit.FindAllString(raw, -1)) > 8 && !strings.Contains(raw, ".") {
				score -= 100
			}
			candidates = append(candidates, candidate{value: val, score: score})
		}
	}

	var best *decimal.Decimal
	for _, c := range candidates {
		if c.score <= 20 {
			continue
		}
		if best == nil || c.value.GreaterThan(*best) {
			v := c.value
			best = &v
		}
	}
	return best
}

// ExtractTaxBreakdown lifts CGST/SGST/IGST/GST amounts from the text for
// reviewer context. When tax keywords are present but no amount parses, a
// warning is returned instead.
func ExtractTaxBreakdown(text string) (dto.TaxBreakdown, []string) {
	var bd dto.TaxBreakdown
	assign := func(key string) *decimal.Decimal {
		m := reTaxAmount[key].FindStringSubmatch(text)
		if len(m) < 2 {
			return nil
		}
		if d, ok := parseAmount(m[1]); ok {
			return &d
		}
		return nil
	}

	bd.CGST = assign("cgst")
	bd.SGST = assign("sgst")
	bd.IGST = assign("igst")
	if bd.CGST == nil && bd.SGST == nil && bd.IGST == nil {
		bd.GST = assign("gst")
	}

	lower := strings.ToLower(text)
	if bd.Empty() && (strings.Contains(lower, "tax") || strings.Contains(lower, "gst")) {
		return bd, []string{"tax entries present but not calculable"}
	}
	return bd, nil
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
