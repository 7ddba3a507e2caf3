package models

// ItemShare assigns (part of) one item to one person with a relative weight.
//
// Weights are relative within an item and need not sum to any particular
// value: a person's fraction of the item is weight / (sum of all weights on
// that item). Equal weights mean an equal split; weight 2 vs 1 means a
// two-thirds / one-third split. A share with weight 0 keeps the person
// visibly attached to the item but contributes nothing to their total.
type ItemShare struct {
	// ItemID is the item being shared.
	ItemID string `json:"item_id"`

	// PersonID is the person receiving a portion of the item.
	PersonID string `json:"person_id"`

	// Weight is the person's relative weight for this item. Must be >= 0.
	Weight float64 `json:"weight"`
}
