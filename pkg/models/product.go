package models

import "time"

// Product is the slice of the catalog the allocation core reads: enough to
// resolve a product to its subcategory. The full catalog lives with the
// catalog service.
type Product struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	SubcategoryID string    `json:"subcategory_id" db:"subcategory_id"`
	CategoryID    string    `json:"category_id" db:"category_id"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
