// Package report turns an order and its results into a PDF report with a QR
// code linking to the report's public URL.
package report

import (
	"surya-backend/internal/models"
)

// TableHeader is the first row of every result table.
var TableHeader = []string{"Test", "Result", "Range"}

// Document is the content of a report before layout.
type Document struct {
	Title       string
	PatientLine string
	// Rows holds the result table, header first, then one row per result in insertion order.
	Rows      [][]string
	QRPayload string
}

// BuildDocument assembles report content for an order.
func BuildDocument(labName string, order *models.Order, patient *models.Patient, results []models.TestResult, publicURL string) Document {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, append([]string(nil), TableHeader...))
	for _, r := range results {
		refRange := ""
		if r.RefRange != nil {
			refRange = *r.RefRange
		}
		rows = append(rows, []string{r.TestName, r.Result, refRange})
	}

	return Document{
		Title:       labName + " REPORT: " + order.OrderNo,
		PatientLine: "Patient: " + patient.Name,
		Rows:        rows,
		QRPayload:   publicURL,
	}
}

// PublicLink is the path suffix under which a token's report is served.
func PublicLink(token string) string {
	return "/r/" + token
}
