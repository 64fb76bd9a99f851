package dto

import "github.com/shopspring/decimal"

// LineKind labels a normalized line for the downstream extractors.
type LineKind string

const (
	KindSummary  LineKind = "SUMMARY"
	KindItem     LineKind = "ITEM"
	KindMetadata LineKind = "METADATA"
	KindUnknown  LineKind = "UNKNOWN"
)

// TextLine is one positioned text fragment from a text-native PDF page.
// Lines are reconstructed by grouping fragments with equal rounded Y and
// sorting by X.
type TextLine struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ClassifiedLine is the per-line view built from normalized text. It is an
// intermediate value only and is never persisted.
type ClassifiedLine struct {
	Text      string   `json:"text"`
	Kind      LineKind `json:"kind"`
	LineIndex int      `json:"line_index"`
	// SummaryValue is the last decimal-formatted number on a SUMMARY line,
	// nil for other kinds or when no number was found.
	SummaryValue *decimal.Decimal `json:"summary_value,omitempty"`
}

// LineItem is one structurally parsed purchase row.
// Invariant: |Quantity*UnitRate - Amount| <= 0.01 whenever the amount was
// independently stated on the line; otherwise Amount is derived.
type LineItem struct {
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	UnitRate        decimal.Decimal `json:"unit_rate"`
	Amount          decimal.Decimal `json:"amount"`
	SourceLineIndex int             `json:"source_line_index"`
}

// ParsedInvoiceFields holds the header fields extracted from a document.
// DeclaredTotal is nil when no usable total was found; it is never defaulted
// to zero.
type ParsedInvoiceFields struct {
	Merchant      string           `json:"merchant"`
	Date          string           `json:"date"`
	DeclaredTotal *decimal.Decimal `json:"declared_total,omitempty"`
}

// VerificationStatus is the reconciler verdict.
type VerificationStatus string

const (
	StatusVerified     VerificationStatus = "Verified"
	StatusNeedsReview  VerificationStatus = "NeedsReview"
	StatusMismatch     VerificationStatus = "Mismatch"
	StatusUnverifiable VerificationStatus = "Unverifiable"
)

// VerificationResult is the final artifact of a pipeline run.
// Difference is always ComputedTotal - DeclaredTotal: positive means the
// printed total is lower than what the detected items add up to.
type VerificationResult struct {
	Status        VerificationStatus `json:"status"`
	ComputedTotal decimal.Decimal    `json:"computed_total"`
	DeclaredTotal decimal.Decimal    `json:"declared_total"`
	Difference    decimal.Decimal    `json:"difference_amount"`
	ItemCount     int                `json:"item_count"`
	// FallbackUsed marks results whose computed total came from unstructured
	// numeric tokens rather than line items.
	FallbackUsed bool     `json:"fallback_used"`
	Warnings     []string `json:"warnings"`
	Explanation  string   `json:"explanation"`
}

// ConfidenceScore is a read-only signal for the human reviewer. It never
// alters the verification verdict.
type ConfidenceScore struct {
	Value   int      `json:"value"`
	Label   string   `json:"label"` // High | Medium | Low
	Reasons []string `json:"reasons"`
}

// TaxBreakdown lists tax amounts lifted from the text for reviewer context.
type TaxBreakdown struct {
	CGST *decimal.Decimal `json:"cgst,omitempty"`
	SGST *decimal.Decimal `json:"sgst,omitempty"`
	IGST *decimal.Decimal `json:"igst,omitempty"`
	GST  *decimal.Decimal `json:"gst,omitempty"`
}

// Empty reports whether no tax amount was found.
func (t TaxBreakdown) Empty() bool {
	return t.CGST == nil && t.SGST == nil && t.IGST == nil && t.GST == nil
}
