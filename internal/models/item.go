package models

// Item represents a single line item on a receipt.
// Items can be shared among multiple people via ItemShare rows.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// ReceiptID is the receipt this item belongs to.
	ReceiptID string `json:"receipt_id"`

	// Label is the name of the item as it appears on the receipt
	// (e.g., "Caesar Salad", "Chicken Nuggets").
	Label string `json:"label"`

	// Price is the line total for this item in dollars, pre-tax.
	// It is the full line price, not a unit price.
	Price float64 `json:"price"`

	// Quantity is informational only; Price already covers the whole line.
	Quantity int `json:"quantity"`

	// Position is the stable ordering key within the receipt.
	Position int `json:"position"`
}
