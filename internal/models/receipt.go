package models

// SplitMode selects how a receipt-level charge (tax or tip) is divided
// among people.
type SplitMode string

const (
	// SplitProportional divides the charge in proportion to each person's
	// item subtotal.
	SplitProportional SplitMode = "proportional"

	// SplitEven divides the charge equally among people.
	SplitEven SplitMode = "even"
)

// Receipt represents a bill to be split: its line items, the people splitting
// it, the item-to-person assignments, and the settings that control how tax
// and tip are divided.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string `json:"id"`

	// OwnerID is the user who created the receipt. Only the owner can read
	// or modify it.
	OwnerID string `json:"owner_id"`

	// Title is the human-readable name for the receipt.
	// Auto-generated from the people list when left blank.
	Title string `json:"title"`

	// Tax is the absolute tax amount on the bill, in dollars.
	Tax float64 `json:"tax"`

	// Tip is the absolute tip amount on the bill, in dollars.
	Tip float64 `json:"tip"`

	// TaxMode controls how Tax is divided among people.
	TaxMode SplitMode `json:"tax_mode"`

	// TipMode controls how Tip is divided among people.
	TipMode SplitMode `json:"tip_mode"`

	// IncludeZeroPeople controls whether people with no assigned items
	// participate in an even tax/tip division.
	IncludeZeroPeople bool `json:"include_zero_people"`

	// Items are the line items on the receipt, in Position order.
	Items []Item `json:"items"`

	// People are the people splitting the receipt, in Position order.
	People []Person `json:"people"`

	// Shares are the item-to-person assignments across all items.
	Shares []ItemShare `json:"shares"`

	// CreatedAt is the Unix timestamp when the receipt was created.
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64 `json:"updated_at"`
}

// ReceiptSummary is the list-view projection of a receipt: enough to render
// a history row without loading items, people, and shares.
type ReceiptSummary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Subtotal    float64 `json:"subtotal"`
	ItemCount   int     `json:"item_count"`
	PeopleCount int     `json:"people_count"`
	CreatedAt   int64   `json:"created_at"`
}
