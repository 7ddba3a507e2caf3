package models

// Person represents someone splitting a receipt.
// People are per-receipt records identified by name; they are not linked to
// User accounts.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string `json:"id"`

	// ReceiptID is the receipt this person belongs to.
	ReceiptID string `json:"receipt_id"`

	// Name is the display name (e.g., "Alice").
	Name string `json:"name"`

	// IsPaid records whether this person has settled up with the payer.
	// It has no effect on split computation.
	IsPaid bool `json:"is_paid"`

	// Position is the stable ordering key within the receipt. Penny
	// reconciliation breaks ties in this order.
	Position int `json:"position"`
}
