package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title, optional section
// headings and a table body. Sections allow one document to carry several
// program tables.
func (e *PDFExporter) Render(sections []Section, title string) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	for _, section := range sections {
		if len(section.Data.Headers) == 0 {
			return nil, fmt.Errorf("pdf section %q requires at least one header", section.Heading)
		}
		if section.Heading != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 9, tr(section.Heading), "", 1, "L", false, 0, "")
			pdf.Ln(1)
		}

		colWidth := 277.0 / float64(len(section.Data.Headers))
		pdf.SetFont("Arial", "B", 10)
		for _, header := range section.Data.Headers {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Data.Rows {
			for _, header := range section.Data.Headers {
				pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Section pairs a heading with its table.
type Section struct {
	Heading string
	Data    Dataset
}
