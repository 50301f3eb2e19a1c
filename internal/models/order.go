package models

import "time"

// Order is one patient's set of requested tests and their eventual report.
// OrderNo and Token are never reassigned once set.
type Order struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderNo   string    `json:"order_no" gorm:"uniqueIndex;not null"`
	PatientID uint      `json:"patient_id" gorm:"index;not null"`
	PDFPath   *string   `json:"pdf_path"`
	Token     *string   `json:"-" gorm:"uniqueIndex"` // Grants public read access to the report; never echoed back
	CreatedAt time.Time `json:"created_at"`
}

// HasDocument reports whether a report has been generated for the order.
func (o *Order) HasDocument() bool {
	return o.PDFPath != nil && *o.PDFPath != ""
}
