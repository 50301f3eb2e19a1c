package models

import "time"

// Patient defines the structure for patient records.
type Patient struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;index"`
	Phone     *string   `json:"phone"` // Optional field
	Email     *string   `json:"email"` // Optional field
	CreatedAt time.Time `json:"created_at"`
}
