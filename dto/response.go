package dto

import "errors"

// Custom errors
var (
	ErrEmptyDocument     = errors.New("document is empty")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoText            = errors.New("no text could be extracted from the document")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// InvoiceVerifyResponse is the final response structure
type InvoiceVerifyResponse struct {
	Fields        ParsedInvoiceFields `json:"fields"`
	Items         []LineItem          `json:"items"`
	Verification  VerificationResult  `json:"verification"`
	Confidence    ConfidenceScore     `json:"confidence"`
	SignalQuality string              `json:"signal_quality"`
	Tax           TaxBreakdown        `json:"tax"`
	QRPayload     string              `json:"qr_payload,omitempty"`
	HistoryID     string              `json:"history_id,omitempty"`
	ProcessedAt   string              `json:"processed_at"`
}
