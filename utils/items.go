package utils

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/atorhub/Anj-dual-v1/dto"
)

// Sanity bounds for structural item rows. Values outside these ranges are a
// stronger signal of a misclassified line than of a genuine purchase row.
var (
	maxItemQuantity = 1000
	maxUnitRate     = decimal.NewFromInt(100000)

	// amountTolerance is the maximum allowed gap between a stated amount and
	// quantity*rate before the row is rejected.
	amountTolerance = decimal.RequireFromString("0.01")
)

// description (at least one non-numeric token), integer quantity, two-decimal
// unit rate, optional two-decimal amount.
var reItemRow = regexp.MustCompile(`^(.+?)\s+(\d{1,4})\s+(?:₹|Rs\.?|INR)?\s*((?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2})(?:\s+(?:₹|Rs\.?|INR)?\s*((?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}))?\s*$`)

// ExtractItems parses ITEM-classified lines into structured line items.
// Rows failing the structural pattern contribute nothing; rows whose stated
// amount contradicts quantity*rate are dropped with a warning rather than
// coerced. Every emitted item satisfies |quantity*rate - amount| <= 0.01.
func ExtractItems(classified []dto.ClassifiedLine) ([]dto.LineItem, []string) {
	var items []dto.LineItem
	var warnings []string

	for _, cl := range classified {
		if cl.Kind != dto.KindItem {
			continue
		}
		item, ok, warn := parseItemRow(cl)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if ok {
			items = append(items, item)
		}
	}
	return items, warnings
}

func parseItemRow(cl dto.ClassifiedLine) (dto.LineItem, bool, string) {
	m := reItemRow.FindStringSubmatch(cl.Text)
	if m == nil {
		return dto.LineItem{}, false, ""
	}

	desc := m[1]
	if !reAnyLetter.MatchString(desc) {
		return dto.LineItem{}, false, ""
	}

	qty, ok := parseAmount(m[2])
	if !ok || !qty.IsInteger() || !qty.IsPositive() || qty.IntPart() > int64(maxItemQuantity) {
		return dto.LineItem{}, false, ""
	}
	rate, ok := parseAmount(m[3])
	if !ok || !rate.IsPositive() || rate.GreaterThanOrEqual(maxUnitRate) {
		return dto.LineItem{}, false, ""
	}

	item := dto.LineItem{
		Description:     desc,
		Quantity:        int(qty.IntPart()),
		UnitRate:        rate,
		SourceLineIndex: cl.LineIndex,
	}

	expected := qty.Mul(rate)
	if m[4] == "" {
		item.Amount = expected
		return item, true, ""
	}

	amount, ok := parseAmount(m[4])
	if !ok {
		return dto.LineItem{}, false, ""
	}
	if expected.Sub(amount).Abs().GreaterThan(amountTolerance) {
		return dto.LineItem{}, false,
			fmt.Sprintf("line %d: quantity x rate (%s) does not match stated amount (%s), row dropped",
				cl.LineIndex+1, expected.StringFixed(2), amount.StringFixed(2))
	}
	item.Amount = amount
	return item, true, ""
}
