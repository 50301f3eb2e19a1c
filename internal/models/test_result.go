package models

// TestResult is a single test line on an order. Result is free text.
type TestResult struct {
	ID       uint    `json:"id" gorm:"primaryKey"` // Insertion order
	OrderID  uint    `json:"order_id" gorm:"index;not null"`
	TestName string  `json:"test_name" gorm:"not null"`
	Result   string  `json:"result"`
	RefRange *string `json:"ref_range"`
}
