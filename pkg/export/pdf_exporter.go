package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 277.0 // A4 landscape minus margins
	pdfLineHeight = 5.0
)

// PDFExporter renders datasets into a landscape tabular PDF. Long cell
// values wrap inside their column.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType returns the MIME type of rendered output.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension returns the file extension of rendered output.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates a PDF document with the dataset title and table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	widths := columnWidths(data.Columns)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, label := range data.labels() {
		pdf.CellFormat(widths[i], 7, tr(label), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		lines := 1
		for i, col := range data.Columns {
			if n := len(pdf.SplitLines([]byte(tr(row[col.Key])), widths[i]-2)); n > lines {
				lines = n
			}
		}
		height := float64(lines) * pdfLineHeight
		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		if pdf.GetY()+height > pageHeight-bottom {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()
		for i, col := range data.Columns {
			pdf.Rect(x, y, widths[i], height, "D")
			pdf.SetXY(x+1, y)
			pdf.MultiCell(widths[i]-2, pdfLineHeight, tr(row[col.Key]), "", "L", false)
			x += widths[i]
			pdf.SetXY(x, y)
		}
		pdf.SetXY(10, y+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, col := range cols {
		if col.Width > 0 {
			total += col.Width
		} else {
			total++
		}
	}
	out := make([]float64, len(cols))
	for i, col := range cols {
		weight := col.Width
		if weight <= 0 {
			weight = 1
		}
		out[i] = pdfPageWidth * weight / total
	}
	return out
}
