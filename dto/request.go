package dto

import "errors"

// ParseRequest carries already-extracted text for the OCR-free endpoint.
type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

// Validate performs basic validation on the request
func (r *ParseRequest) Validate() error {
	if r.Text == "" {
		return errors.New("text is required")
	}
	return nil
}
