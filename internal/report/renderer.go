package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Layout constants, in PDF points.
const (
	pageMargin   = 50.0
	lineHeight   = 14.0
	cellPaddingY = 2.0
	qrSize       = 100.0
	qrPixels     = 256
	qrImageName  = "public-link-qr"
)

// columnWidths spans the printable width of an A4 page (595pt - 2 margins).
var columnWidths = []float64{215, 140, 140}

// QREncoder returns a PNG image of a QR code carrying payload.
type QREncoder func(payload string, pixels int) ([]byte, error)

// EncodeQR is the default QREncoder.
func EncodeQR(payload string, pixels int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, pixels)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// Renderer lays a Document out as a PDF.
type Renderer struct {
	encodeQR QREncoder
	now      func() time.Time
	compress bool
}

// RendererOption customizes a Renderer.
type RendererOption func(*Renderer)

// WithQREncoder replaces the QR encoder.
func WithQREncoder(enc QREncoder) RendererOption {
	return func(r *Renderer) { r.encodeQR = enc }
}

// WithClock fixes the creation date written into the PDF metadata.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) { r.now = now }
}

// WithoutCompression leaves page content streams uncompressed.
func WithoutCompression() RendererOption {
	return func(r *Renderer) { r.compress = false }
}

// NewRenderer returns a Renderer with the default QR encoder and compression on.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{encodeQR: EncodeQR, now: time.Now, compress: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the PDF bytes for doc.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf, err := r.layout(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) layout(doc Document) (*fpdf.Fpdf, error) {
	qrPNG, err := r.encodeQR(doc.QRPayload, qrPixels)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(r.now())
	pdf.SetModificationDate(r.now())
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("surya-backend", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	// Pages are broken by the table layout so a row is never split by fpdf.
	pdf.SetAutoPageBreak(false, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	_, pageHeight := pdf.GetPageSize()
	bottom := pageHeight - pageMargin

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 20, tr(cleanText(doc.Title)), "", "C", false)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 16, tr(cleanText(doc.PatientLine)), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	header := TableHeader
	if len(doc.Rows) > 0 {
		header = doc.Rows[0]
	}
	t := &table{pdf: pdf, tr: tr}
	headerRow := t.measure(header, true)

	t.draw(headerRow)
	freshPage := true
	for _, cells := range doc.Rows[min(1, len(doc.Rows)):] {
		row := t.measure(cells, false)
		for {
			if pdf.GetY()+row.height <= bottom {
				t.draw(row)
				freshPage = false
				break
			}
			if !freshPage {
				pdf.AddPage()
				t.draw(headerRow)
				freshPage = true
				continue
			}
			// Taller than a whole page: continue the row on the next one.
			fit := int((bottom - pdf.GetY() - 2*cellPaddingY) / lineHeight)
			var rest tableRow
			row, rest = row.split(max(fit, 1))
			t.draw(row)
			pdf.AddPage()
			t.draw(headerRow)
			row = rest
		}
	}

	if pdf.GetY()+12+qrSize > bottom {
		pdf.AddPage()
	} else {
		pdf.Ln(12)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(qrImageName, pageMargin, pdf.GetY(), qrSize, qrSize, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	return pdf, nil
}

// cleanText replaces control characters so a value cannot break the line
// layout. Content stream escaping is done by fpdf.
func cleanText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s))
}

type tableRow struct {
	header bool
	cells  [][]string
	height float64
}

// split returns the first n lines of every cell and the remainder.
func (r tableRow) split(n int) (tableRow, tableRow) {
	head := tableRow{header: r.header, cells: make([][]string, len(r.cells))}
	rest := tableRow{header: r.header, cells: make([][]string, len(r.cells))}
	for i, lines := range r.cells {
		k := min(n, len(lines))
		head.cells[i] = lines[:k]
		rest.cells[i] = lines[k:]
	}
	head.height = rowHeight(head.cells)
	rest.height = rowHeight(rest.cells)
	return head, rest
}

func rowHeight(cells [][]string) float64 {
	lines := 1
	for _, c := range cells {
		lines = max(lines, len(c))
	}
	return float64(lines)*lineHeight + 2*cellPaddingY
}

type table struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (t *table) font(header bool) {
	if header {
		t.pdf.SetFont("Helvetica", "B", 11)
		t.pdf.SetFillColor(230, 230, 230)
		return
	}
	t.pdf.SetFont("Helvetica", "", 11)
}

// measure wraps every cell of row to its column width.
func (t *table) measure(row []string, header bool) tableRow {
	t.font(header)
	r := tableRow{header: header, cells: make([][]string, len(columnWidths))}
	for i, w := range columnWidths {
		text := ""
		if i < len(row) {
			text = t.tr(cleanText(row[i]))
		}
		r.cells[i] = wrapText(t.pdf, text, w)
	}
	r.height = rowHeight(r.cells)
	return r
}

// draw outputs a bordered row at the current position and moves below it.
func (t *table) draw(r tableRow) {
	t.font(r.header)
	style := "D"
	if r.header {
		style = "FD"
	}
	x, y := pageMargin, t.pdf.GetY()
	for i, w := range columnWidths {
		t.pdf.Rect(x, y, w, r.height, style)
		for j, line := range r.cells[i] {
			t.pdf.SetXY(x, y+cellPaddingY+float64(j)*lineHeight)
			t.pdf.CellFormat(w, lineHeight, line, "", 0, "L", false, 0, "")
		}
		x += w
	}
	t.pdf.SetXY(pageMargin, y+r.height)
}

// wrapText breaks s into lines that fit within width, splitting at spaces
// and inside words longer than a line. s is already in the single-byte code
// page of the core font.
func wrapText(pdf *fpdf.Fpdf, s string, width float64) []string {
	var lines []string
	for _, line := range pdf.SplitLines([]byte(s), width) {
		lines = append(lines, string(line))
	}
	return lines
}
