package service

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/atorhub/Anj-dual-v1/client"
	"github.com/atorhub/Anj-dual-v1/config"
	"github.com/atorhub/Anj-dual-v1/dto"
	"github.com/atorhub/Anj-dual-v1/store"
	"github.com/atorhub/Anj-dual-v1/utils"
)

// minDirectTextLen is the threshold below which a PDF text layer is treated
// as absent and the scanned-image OCR pass kicks in.
const minDirectTextLen = 50

type InvoiceService struct {
	tesseractClient *client.TesseractClient
	pdfProcessor    PDFProcessor
	history         *store.HistoryStore
	cfg             *config.Config
}

func NewInvoiceService(
	tesseractClient *client.TesseractClient,
	pdfProcessor PDFProcessor,
	history *store.HistoryStore,
	cfg *config.Config,
) *InvoiceService {
	return &InvoiceService{
		tesseractClient: tesseractClient,
		pdfProcessor:    pdfProcessor,
		history:         history,
		cfg:             cfg,
	}
}

// VerifyUpload runs the full pipeline over an uploaded document: extraction
// (PDF text layer and/or OCR), normalization, field and item extraction,
// reconciliation, confidence scoring, and a history append.
func (s *InvoiceService) VerifyUpload(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.InvoiceVerifyResponse, error) {
	if fileHeader.Size > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("file %s exceeds the %d byte limit", fileHeader.Filename, s.cfg.MaxFileSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileHeader.Filename, err)
	}
	if len(data) == 0 {
		return nil, dto.ErrEmptyDocument
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	rawText, qrPayload, err := s.extractText(ctx, fileHeader.Filename, mimeType, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rawText) == "" {
		return nil, dto.ErrNoText
	}

	response := s.runPipeline(rawText)
	response.QRPayload = qrPayload
	s.appendHistory(response)
	return response, nil
}

// VerifyText runs the OCR-free pipeline over already-extracted text.
func (s *InvoiceService) VerifyText(text string) *dto.InvoiceVerifyResponse {
	response := s.runPipeline(text)
	s.appendHistory(response)
	return response
}

// History lists stored verification records, newest first.
func (s *InvoiceService) History(filter string) ([]store.Record, error) {
	return s.history.List(filter)
}

// extractText produces raw text from the document. PDFs get a dual-pass
// treatment: the text layer and, when that is too thin, an OCR pass over the
// page images, merged deterministically. Images go straight to OCR after
// enhancement. A canceled context is a hard failure; stale partial text never
// enters the pipeline.
func (s *InvoiceService) extractText(ctx context.Context, filename, mimeType string, data []byte) (string, string, error) {
	isPDF := strings.HasSuffix(strings.ToLower(filename), ".pdf") ||
		strings.EqualFold(mimeType, "application/pdf")

	if isPDF {
		return s.extractFromPDF(ctx, filename, data)
	}
	return s.extractFromImage(ctx, mimeType, data)
}

func (s *InvoiceService) extractFromPDF(ctx context.Context, filename string, data []byte) (string, string, error) {
	var directText string
	fragments, err := s.pdfProcessor.ExtractTextLines(data)
	if err != nil {
		log.Printf("PDF text extraction failed for %s: %v", filename, err)
	} else {
		directText = FlattenTextLines(fragments)
	}

	if len(strings.TrimSpace(directText)) >= minDirectTextLen {
		return directText, s.detectQRInPDF(data), nil
	}

	log.Printf("PDF %s has minimal text layer, attempting image-based OCR", filename)

	images, err := s.pdfProcessor.ExtractImages(data)
	if err != nil || len(images) == 0 {
		if img, renderErr := s.pdfProcessor.RenderFirstPage(data); renderErr == nil {
			images = []image.Image{img}
		} else {
			log.Printf("Failed to rasterize PDF %s: %v", filename, renderErr)
		}
	}

	var combined strings.Builder
	var qrPayload string
	for _, img := range images {
		if qrPayload == "" {
			qrPayload = detectQR(img)
		}

		if err := ctx.Err(); err != nil {
			return "", "", fmt.Errorf("extraction aborted: %w", err)
		}

		pageText, err := s.ocrImage(img)
		if err != nil {
			log.Printf("OCR failed for a page in %s: %v", filename, err)
			continue
		}
		combined.WriteString(pageText)
		combined.WriteString("\n")
	}

	if err := ctx.Err(); err != nil {
		return "", "", fmt.Errorf("extraction aborted: %w", err)
	}

	merged := mergeExtractionPasses(directText, combined.String())
	return merged, qrPayload, nil
}

func (s *InvoiceService) extractFromImage(ctx context.Context, mimeType string, data []byte) (string, string, error) {
	img, err := DecodeUploadedImage(data, mimeType)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", dto.ErrUnsupportedFormat, err)
	}

	qrPayload := detectQR(img)

	if err := ctx.Err(); err != nil {
		return "", "", fmt.Errorf("extraction aborted: %w", err)
	}

	text, err := s.ocrImage(img)
	if err != nil {
		return "", "", fmt.Errorf("image OCR failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", "", fmt.Errorf("extraction aborted: %w", err)
	}
	return text, qrPayload, nil
}

func (s *InvoiceService) ocrImage(img image.Image) (string, error) {
	tempFile, err := SaveTempPNG(EnhanceForOCR(img))
	if err != nil {
		return "", err
	}
	defer os.Remove(tempFile)

	text, conf, err := s.tesseractClient.ExtractTextAndQuality(tempFile)
	if err != nil {
		return "", err
	}
	log.Printf("OCR extracted %d characters at %.1f%% confidence", len(text), conf)
	return text, nil
}

// runPipeline is the pure core: normalized text in, complete response out.
// Every stage degrades to an explicit empty or partial value; nothing here
// returns an error.
func (s *InvoiceService) runPipeline(rawText string) *dto.InvoiceVerifyResponse {
	lines := utils.Normalize(rawText)
	cleaned := strings.Join(lines, "\n")

	classified := utils.ClassifyLines(lines)
	fields := utils.ExtractFields(lines, classified, s.cfg.MerchantScanDepth)
	items, itemWarnings := utils.ExtractItems(classified)

	result := utils.Reconcile(fields, items, lines, s.cfg.Tolerance)
	result.Warnings = append(result.Warnings, itemWarnings...)

	tax, taxWarnings := utils.ExtractTaxBreakdown(cleaned)
	result.Warnings = append(result.Warnings, taxWarnings...)

	return &dto.InvoiceVerifyResponse{
		Fields:        fields,
		Items:         items,
		Verification:  result,
		Confidence:    utils.Score(fields, cleaned),
		SignalQuality: utils.ClassifySignalQuality(rawText),
		Tax:           tax,
		ProcessedAt:   time.Now().Format(time.RFC3339),
	}
}

func (s *InvoiceService) appendHistory(response *dto.InvoiceVerifyResponse) {
	if s.history == nil {
		return
	}
	rec := store.Record{
		ID:            uuid.NewString(),
		Merchant:      response.Fields.Merchant,
		Date:          response.Fields.Date,
		ComputedTotal: response.Verification.ComputedTotal.StringFixed(2),
		Status:        string(response.Verification.Status),
		Confidence:    response.Confidence.Value,
	}
	if response.Fields.DeclaredTotal != nil {
		rec.DeclaredTotal = response.Fields.DeclaredTotal.StringFixed(2)
	}
	if err := s.history.Append(rec); err != nil {
		log.Printf("Failed to append history record: %v", err)
		return
	}
	response.HistoryID = rec.ID
}

// mergeExtractionPasses merges two independent extraction attempts: the pass
// with materially more text wins outright; otherwise distinct lines are
// unioned in first-seen order.
func mergeExtractionPasses(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case len(a) >= len(b)*3/2:
		return a
	case len(b) >= len(a)*3/2:
		return b
	}

	seen := make(map[string]bool)
	var result []string
	for _, text := range []string{a, b} {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			normalized := strings.ToLower(line)
			if !seen[normalized] {
				seen[normalized] = true
				result = append(result, line)
			}
		}
	}
	return strings.Join(result, "\n")
}

// detectQR looks for a QR code in the page image. GST e-invoices carry a
// signed payload; detection is best-effort and the payload is surfaced, not
// interpreted.
func detectQR(img image.Image) string {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return ""
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return ""
	}
	return result.GetText()
}

// detectQRInPDF scans embedded images of a text-native PDF for a QR code.
func (s *InvoiceService) detectQRInPDF(data []byte) string {
	images, err := s.pdfProcessor.ExtractImages(data)
	if err != nil {
		return ""
	}
	for _, img := range images {
		if payload := detectQR(img); payload != "" {
			return payload
		}
	}
	return ""
}
