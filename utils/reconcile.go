package utils

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atorhub/Anj-dual-v1/dto"
)

// DefaultTolerance is the absolute currency difference treated as a match.
// Widen via config when documents are known to round aggressively.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Reconcile compares the declared total against a total computed from line
// items, or from loose numeric tokens when no structural items were found.
//
// The verdict machine: no declared total is always Unverifiable, never a
// guessed comparison. With items, Verified within tolerance and Mismatch
// beyond it. Without items the numeric-token fallback is a degraded path: it
// caps at NeedsReview even when the difference is within tolerance, because
// the comparison is statistically weaker.
//
// The difference is computed - declared: positive means the printed total is
// lower than what the document's items add up to.
func Reconcile(fields dto.ParsedInvoiceFields, items []dto.LineItem, lines []string, tolerance decimal.Decimal) dto.VerificationResult {
	result := dto.VerificationResult{
		ItemCount: len(items),
		Warnings:  []string{},
	}

	computed := decimal.Zero
	for _, item := range items {
		computed = computed.Add(item.Amount)
	}
	result.ComputedTotal = computed

	if fields.DeclaredTotal == nil {
		result.Status = dto.StatusUnverifiable
		result.Warnings = append(result.Warnings, "invoice total missing or could not be extracted")
		if len(items) == 0 {
			result.Warnings = append(result.Warnings, "no line items found")
		}
		result.Explanation = "Unverifiable: no usable invoice total was found"
		return result
	}
	result.DeclaredTotal = *fields.DeclaredTotal

	if len(items) == 0 {
		return reconcileFallback(result, lines, tolerance)
	}

	result.Difference = computed.Sub(result.DeclaredTotal)
	if result.Difference.Abs().LessThanOrEqual(tolerance) {
		result.Status = dto.StatusVerified
		result.Explanation = "Invoice total matches the computed item total"
		return result
	}

	result.Status = dto.StatusMismatch
	result.Explanation = explainDifference(result.Difference)
	return result
}

// Verify is the pure verification entry point over parsed fields, cleaned
// text and optional line items, using the default tolerance.
func Verify(fields dto.ParsedInvoiceFields, cleanedText string, items []dto.LineItem) dto.VerificationResult {
	return Reconcile(fields, items, splitLines(cleanedText), DefaultTolerance)
}

// reconcileFallback computes a total from loose two-decimal tokens in the
// text. When the declared total itself appears among them, one occurrence is
// excluded so it does not double-count; otherwise the single largest token
// stands in as a last resort.
func reconcileFallback(result dto.VerificationResult, lines []string, tolerance decimal.Decimal) dto.VerificationResult {
	declared := result.DeclaredTotal
	tokens := collectMoneyTokens(lines)

	if len(tokens) == 0 {
		result.Status = dto.StatusUnverifiable
		result.Warnings = append(result.Warnings,
			"no line items found",
			"no numeric amounts available to compute a total")
		result.Explanation = "Unverifiable: no item structure or usable amounts were found"
		return result
	}

	result.FallbackUsed = true
	result.Warnings = append(result.Warnings,
		"computed total derived from unstructured numeric tokens, not line items")

	computed := decimal.Zero
	if idx := indexOfAmount(tokens, declared); idx >= 0 {
		for i, tok := range tokens {
			if i == idx {
				continue
			}
			computed = computed.Add(tok)
		}
	} else {
		for _, tok := range tokens {
			if tok.GreaterThan(computed) {
				computed = tok
			}
		}
		result.Warnings = append(result.Warnings,
			"declared total not present among detected amounts; using largest amount")
	}

	result.ComputedTotal = computed
	result.Difference = computed.Sub(declared)

	if result.Difference.Abs().LessThanOrEqual(tolerance) {
		result.Status = dto.StatusNeedsReview
		result.Explanation = "Amounts reconcile within tolerance, but no structured line items were found"
		return result
	}

	result.Status = dto.StatusMismatch
	result.Explanation = explainDifference(result.Difference)
	return result
}

func explainDifference(diff decimal.Decimal) string {
	if diff.IsPositive() {
		return fmt.Sprintf("Invoice total is ₹%s lower than the computed total", diff.StringFixed(2))
	}
	return fmt.Sprintf("Invoice total exceeds the computed total by ₹%s (possible overcharge)", diff.Abs().StringFixed(2))
}

// collectMoneyTokens gathers every two-decimal amount in the text, in
// document order.
func collectMoneyTokens(lines []string) []decimal.Decimal {
	var tokens []decimal.Decimal
	for _, line := range lines {
		for _, m := range reMoneyToken.FindAllString(line, -1) {
			if d, ok := parseAmount(m); ok {
				tokens = append(tokens, d)
			}
		}
	}
	return tokens
}

func indexOfAmount(tokens []decimal.Decimal, target decimal.Decimal) int {
	for i, tok := range tokens {
		if tok.Equal(target) {
			return i
		}
	}
	return -1
}
