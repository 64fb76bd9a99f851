package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atorhub/Anj-dual-v1/dto"
	"github.com/atorhub/Anj-dual-v1/service"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// VerifyInvoice handles POST /invoice/verify: one uploaded image or PDF
// through the full extraction-and-verification pipeline. An Unverifiable
// document is a 200 with the status in the body, not an HTTP error.
func (h *InvoiceHandler) VerifyInvoice(c *gin.Context) {
	log.Println("Received invoice verification request")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "No file provided", err)
		return
	}

	response, err := h.invoiceService.VerifyUpload(c.Request.Context(), fileHeader)
	if err != nil {
		h.sendError(c, http.StatusUnprocessableEntity, "Failed to process document", err)
		return
	}

	log.Printf("Invoice verification completed: %s", response.Verification.Status)
	c.JSON(http.StatusOK, response)
}

// ParseText handles POST /invoice/parse: already-extracted text through the
// OCR-free pipeline.
func (h *InvoiceHandler) ParseText(c *gin.Context) {
	var request dto.ParseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	response := h.invoiceService.VerifyText(request.Text)
	c.JSON(http.StatusOK, response)
}

// History handles GET /invoice/history, newest first, with an optional
// substring filter in the q parameter.
func (h *InvoiceHandler) History(c *gin.Context) {
	records, err := h.invoiceService.History(c.Query("q"))
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to load history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// sendError sends a structured error response
func (h *InvoiceHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "VERIFICATION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
