package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"regexp"
	"strings"
	"testing"
	"time"

	"surya-backend/internal/models"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeQR(t *testing.T, png []byte) string {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(png))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	res, err := zxingqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return res.GetText()
}

var showText = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)\s*Tj`)

// textOperands returns the strings shown by Tj operators in an uncompressed
// PDF, in content stream order.
func textOperands(pdf []byte) []string {
	unescape := strings.NewReplacer(`\\`, `\`, `\(`, `(`, `\)`, `)`)
	var out []string
	for _, m := range showText.FindAllSubmatch(pdf, -1) {
		out = append(out, unescape.Replace(string(m[1])))
	}
	return out
}

func countOf(ops []string, s string) int {
	n := 0
	for _, op := range ops {
		if op == s {
			n++
		}
	}
	return n
}

func indexOf(ops []string, s string) int {
	for i, op := range ops {
		if op == s {
			return i
		}
	}
	return -1
}

func fixedClock() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }

func strPtr(s string) *string { return &s }

func sampleDocument(results []models.TestResult) Document {
	order := &models.Order{ID: 1, OrderNo: "SURYA-1760000000-aabbccddeeff"}
	patient := &models.Patient{ID: 1, Name: "A. Rao"}
	return BuildDocument("SURYA DIAGNOSTICS", order, patient, results, "http://lab.test/r/tok")
}

func TestBuildDocumentEmptyResults(t *testing.T) {
	doc := sampleDocument(nil)

	assert.Equal(t, "SURYA DIAGNOSTICS REPORT: SURYA-1760000000-aabbccddeeff", doc.Title)
	assert.Equal(t, "Patient: A. Rao", doc.PatientLine)
	assert.Equal(t, [][]string{{"Test", "Result", "Range"}}, doc.Rows)
	assert.Equal(t, "http://lab.test/r/tok", doc.QRPayload)
}

func TestBuildDocumentRowsFollowInsertionOrder(t *testing.T) {
	doc := sampleDocument([]models.TestResult{
		{ID: 1, TestName: "Hemoglobin", Result: "13.5", RefRange: strPtr("13-17")},
		{ID: 2, TestName: "WBC", Result: "9000", RefRange: strPtr("4000-11000")},
		{ID: 3, TestName: "ESR", Result: "12"},
	})

	require.Len(t, doc.Rows, 4)
	assert.Equal(t, []string{"Hemoglobin", "13.5", "13-17"}, doc.Rows[1])
	assert.Equal(t, []string{"WBC", "9000", "4000-11000"}, doc.Rows[2])
	assert.Equal(t, []string{"ESR", "12", ""}, doc.Rows[3])
}

func TestBuildDocumentDoesNotShareHeader(t *testing.T) {
	doc := sampleDocument(nil)
	doc.Rows[0][0] = "changed"

	assert.Equal(t, "Test", TableHeader[0])
}

func TestRenderEmptyTable(t *testing.T) {
	r := NewRenderer(WithClock(fixedClock), WithoutCompression())

	out, err := r.Render(sampleDocument(nil))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	ops := textOperands(out)
	assert.Equal(t, 1, countOf(ops, "Test"))
	assert.Equal(t, 1, countOf(ops, "Result"))
	assert.Equal(t, 1, countOf(ops, "Range"))
	assert.Contains(t, string(out), "SURYA-1760000000-aabbccddeeff")
}

func TestRenderContainsResultRows(t *testing.T) {
	r := NewRenderer(WithClock(fixedClock), WithoutCompression())

	out, err := r.Render(sampleDocument([]models.TestResult{
		{TestName: "Hemoglobin", Result: "13.5", RefRange: strPtr("13-17")},
		{TestName: "WBC", Result: "9000", RefRange: strPtr("4000-11000")},
	}))
	require.NoError(t, err)

	ops := textOperands(out)
	for _, want := range []string{"Patient: A. Rao", "Hemoglobin", "13.5", "13-17", "WBC", "9000", "4000-11000"} {
		assert.Contains(t, ops, want)
	}
	assert.Less(t, indexOf(ops, "Test"), indexOf(ops, "Hemoglobin"))
	assert.Less(t, indexOf(ops, "Hemoglobin"), indexOf(ops, "WBC"))
}

func TestRenderEscapesCellText(t *testing.T) {
	r := NewRenderer(WithClock(fixedClock), WithoutCompression())

	out, err := r.Render(sampleDocument([]models.TestResult{
		{TestName: "Note", Result: "a) Tj (evil\nline"},
	}))
	require.NoError(t, err)

	assert.Contains(t, string(out), `(a\) Tj \(evil line)Tj`)
	assert.Contains(t, textOperands(out), "a) Tj (evil line")
	assert.NotContains(t, textOperands(out), "a")
}

func TestRenderIsDeterministicForFixedClock(t *testing.T) {
	doc := sampleDocument([]models.TestResult{{TestName: "WBC", Result: "9000"}})

	a, err := NewRenderer(WithClock(fixedClock)).Render(doc)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	b, err := NewRenderer(WithClock(fixedClock)).Render(doc)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Contains(t, string(a), "/ModDate (D:20261015093000)")
}

func TestRenderPaginatesAndRepeatsHeader(t *testing.T) {
	var results []models.TestResult
	for i := 0; i < 80; i++ {
		results = append(results, models.TestResult{TestName: fmt.Sprintf("Analyte %02d", i), Result: "1"})
	}
	r := NewRenderer(WithClock(fixedClock), WithoutCompression())

	pdf, err := r.layout(sampleDocument(results))
	require.NoError(t, err)
	pages := pdf.PageCount()
	assert.Greater(t, pages, 1)

	out, err := r.Render(sampleDocument(results))
	require.NoError(t, err)
	ops := textOperands(out)
	assert.Equal(t, pages, countOf(ops, "Test"), "header row on every page")
	for i := 0; i < 80; i++ {
		assert.Equal(t, 1, countOf(ops, fmt.Sprintf("Analyte %02d", i)))
	}
	assert.Less(t, indexOf(ops, "Analyte 00"), indexOf(ops, "Analyte 79"))
}

func TestRenderWrapsLongValues(t *testing.T) {
	refRange := "Male: 13.5-17.5 g/dL; Female: 12.0-15.5 g/dL"
	result := "Reactive (confirm by Western blot)"
	r := NewRenderer(WithClock(fixedClock), WithoutCompression())

	out, err := r.Render(sampleDocument([]models.TestResult{
		{TestName: "HIV 1/2 antibodies", Result: result, RefRange: strPtr(refRange)},
	}))
	require.NoError(t, err)

	ops := textOperands(out)
	assert.NotContains(t, ops, refRange, "value is wider than its column")
	joined := strings.Join(ops, " ")
	assert.Contains(t, joined, result)
	assert.Contains(t, joined, refRange)
	assert.NotContains(t, string(out), "...)")
}

func TestRenderWrapsUnbrokenValues(t *testing.T) {
	long := strings.Repeat("x", 400)
	r := NewRenderer(WithClock(fixedClock), WithoutCompression())

	out, err := r.Render(sampleDocument([]models.TestResult{{TestName: "Comment", Result: long}}))
	require.NoError(t, err)

	ops := textOperands(out)
	assert.Greater(t, len(ops), 5)
	assert.Contains(t, strings.Join(ops, ""), long)
}

func TestRenderSplitsRowTallerThanPage(t *testing.T) {
	words := make([]string, 2000)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	long := strings.Join(words, " ")
	r := NewRenderer(WithClock(fixedClock), WithoutCompression())
	doc := sampleDocument([]models.TestResult{{TestName: "Narrative", Result: long}})

	pdf, err := r.layout(doc)
	require.NoError(t, err)
	require.Greater(t, pdf.PageCount(), 1)

	out, err := r.Render(doc)
	require.NoError(t, err)
	ops := textOperands(out)
	headers := countOf(ops, "Test")
	assert.Greater(t, headers, 1)
	assert.GreaterOrEqual(t, headers, pdf.PageCount()-1, "only the QR code may sit on a page without the table")
	assert.Equal(t, 1, countOf(ops, "Narrative"))
	var body []string
	for _, op := range ops {
		if strings.HasPrefix(op, "w") {
			body = append(body, op)
		}
	}
	assert.Equal(t, long, strings.Join(body, " "))
}

func TestRenderLatinTextUsesCorePage(t *testing.T) {
	r := NewRenderer(WithClock(fixedClock), WithoutCompression())
	doc := sampleDocument(nil)
	doc.PatientLine = "Patient: José Müller"

	out, err := r.Render(doc)
	require.NoError(t, err)

	assert.Contains(t, string(out), "(Patient: Jos\xe9 M\xfcller)Tj")
}

func TestRenderQRCodeCarriesPublicURL(t *testing.T) {
	var captured []byte
	enc := func(payload string, px int) ([]byte, error) {
		png, err := EncodeQR(payload, px)
		captured = png
		return png, err
	}
	r := NewRenderer(WithQREncoder(enc), WithClock(fixedClock))

	_, err := r.Render(sampleDocument(nil))
	require.NoError(t, err)

	assert.Equal(t, "http://lab.test/r/tok", decodeQR(t, captured))
}

func TestRenderFailsWhenQRFails(t *testing.T) {
	boom := errors.New("qr broke")
	r := NewRenderer(WithQREncoder(func(string, int) ([]byte, error) { return nil, boom }))

	_, err := r.Render(sampleDocument(nil))
	assert.ErrorIs(t, err, boom)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b  c", cleanText(" a\tb\r\nc\x00"))
}
