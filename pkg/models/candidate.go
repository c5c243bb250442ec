package models

// VendorCandidate is a vendor proposed as capable of fulfilling a product in
// a zone. Lists are ordered ascending by priority, ties broken by vendor ID.
type VendorCandidate struct {
	VendorID      string     `json:"vendor_id"`
	VendorName    string     `json:"vendor_name"`
	VendorKind    VendorKind `json:"vendor_kind"`
	StockQuantity int        `json:"stock_quantity"`
	SellingPrice  float64    `json:"selling_price"`
	IsAvailable   bool       `json:"is_available"`
	Priority      int        `json:"priority"`
}
