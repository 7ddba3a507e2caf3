package engine

import "splittab/internal/models"

// AssignedLines derives each person's item breakdown from the current share
// state: for every person holding at least one live share row, the items
// they participate in and their raw dollar portion of each, in item input
// order.
//
// Portions follow the same weight normalization ComputeTotals applies, and
// are returned unrounded so per-person sums reproduce the engine's internal
// raw subtotals exactly. Share rows pointing at unknown items are dropped,
// items whose weights sum to zero are skipped, and zero-weight shares on an
// otherwise assigned item yield zero-amount lines.
func AssignedLines(items []models.Item, shares []models.ItemShare) map[string][]AssignedLine {
	prices, billItems := dedupeItems(items)

	aggs := aggregateShares(shares,
		func(id string) bool { _, ok := prices[id]; return ok },
		func(string) bool { return true })

	out := make(map[string][]AssignedLine)
	for _, it := range billItems {
		a := aggs[it.ID]
		if a == nil || a.total <= 0 {
			continue
		}
		price := prices[it.ID]
		for _, pid := range a.order {
			amt := price * (a.weight[pid] / a.total)
			out[pid] = append(out[pid], AssignedLine{ItemID: it.ID, Label: it.Label, Amount: amt})
		}
	}
	return out
}
