package service

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/atorhub/Anj-dual-v1/dto"
)

type PDFProcessor interface {
	// ExtractTextLines reads the PDF text layer as positioned fragments.
	ExtractTextLines(pdfData []byte) ([]dto.TextLine, error)
	// ExtractImages pulls embedded page images out of a scanned PDF.
	ExtractImages(pdfData []byte) ([]image.Image, error)
	// RenderFirstPage rasterizes page one for PDFs that embed no usable
	// images but are still scans.
	RenderFirstPage(pdfData []byte) (image.Image, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

func (p *pdfProcessor) ExtractTextLines(pdfData []byte) ([]dto.TextLine, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, err
	}

	var fragments []dto.TextLine
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		// Offset Y per page so later pages sort below earlier ones.
		pageOffset := float64(pageIndex) * -100000
		content := page.Content()
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			fragments = append(fragments, dto.TextLine{
				Text: t.S,
				X:    t.X,
				Y:    t.Y + pageOffset,
			})
		}
	}
	return fragments, nil
}

// FlattenTextLines reconstructs plain text lines from positioned fragments:
// fragments sharing a rounded Y belong to one line (PDF Y grows upward, so
// higher Y sorts first) and are ordered left to right by X.
func FlattenTextLines(fragments []dto.TextLine) string {
	if len(fragments) == 0 {
		return ""
	}

	rows := make(map[int][]dto.TextLine)
	for _, f := range fragments {
		y := int(math.Round(f.Y))
		rows[y] = append(rows[y], f)
	}

	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	var b strings.Builder
	for _, y := range ys {
		row := rows[y]
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })
		parts := make([]string, 0, len(row))
		for _, f := range row {
			parts = append(parts, f.Text)
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func (p *pdfProcessor) ExtractImages(pdfData []byte) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()

	// nil selects all pages.
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	var images []image.Image
	files, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		imgPath := filepath.Join(tempDir, file.Name())
		imgFile, err := os.Open(imgPath)
		if err != nil {
			continue
		}

		img, _, err := image.Decode(imgFile)
		imgFile.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}

	return images, nil
}

func (p *pdfProcessor) RenderFirstPage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF for rendering: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}
