// Package engine implements the bill split math: weight-normalized item
// assignment, proportional or even division of tax and tip, and penny-exact
// reconciliation of the rounded results. It is the only place in the
// application that computes or rounds money; every consumer (stored receipts,
// the stateless preview, breakdown views) calls into it.
package engine

import (
	"math"
	"sort"

	"splittab/internal/models"
)

// Charges carries the receipt-level figures divided on top of item subtotals.
type Charges struct {
	// Tax and Tip are absolute dollar amounts, not percentages.
	Tax float64
	Tip float64

	// TaxMode and TipMode select proportional or even division. Any other
	// value behaves as proportional.
	TaxMode models.SplitMode
	TipMode models.SplitMode

	// IncludeZeroPeople controls whether people with no assigned items take
	// part in an even division. It has no effect on proportional division.
	IncludeZeroPeople bool
}

// AssignedLine is one person's portion of one item.
// Amount is unrounded; display formatting is the caller's concern.
type AssignedLine struct {
	ItemID string  `json:"item_id"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// PersonTotal is the computed split for one person. Subtotal, TaxShare,
// TipShare, and Total are rounded to cents and Total is always their exact
// sum, including any reconciliation cents.
type PersonTotal struct {
	PersonID string         `json:"person_id"`
	Name     string         `json:"name"`
	Subtotal float64        `json:"subtotal"`
	TaxShare float64        `json:"tax_share"`
	TipShare float64        `json:"tip_share"`
	Total    float64        `json:"total"`
	Lines    []AssignedLine `json:"lines"`
}

// Reconciliation methods reported in BillTotals.
const (
	MethodNone              = "none"
	MethodDistributeLargest = "distribute_largest"
	MethodRemoveSmallest    = "remove_smallest"
)

// Reconciliation records the net cents moved between rounded person totals
// so they sum exactly to the billed total.
type Reconciliation struct {
	DistributedCents int64  `json:"distributed_cents"`
	Method           string `json:"method"`
}

// BillTotals is the full result of a split computation.
type BillTotals struct {
	// Subtotal is the sum of all item prices, assigned or not.
	Subtotal float64 `json:"subtotal"`

	// Tax and Tip echo the sanitized input charges.
	Tax float64 `json:"tax"`
	Tip float64 `json:"tip"`

	// GrandTotal is Subtotal + Tax + Tip rounded once to cents.
	GrandTotal float64 `json:"grand_total"`

	// Unassigned is the portion of Subtotal carried by items nobody is
	// assigned to. Callers use it to warn that the bill is not fully split.
	Unassigned float64 `json:"unassigned"`

	// PersonTotals has one entry per input person, in input order.
	PersonTotals []PersonTotal `json:"person_totals"`

	Reconciliation Reconciliation `json:"penny_reconciliation"`
}

// ComputeTotals computes each person's share of a bill.
//
// Each item is divided among the people holding shares on it, in proportion
// to their weights. Tax and tip are divided per their modes, rounded to
// cents with one half-up rule, and the rounded results are reconciled
// largest-remainder style so the sum of person totals equals the allocated
// bill total in integer cents.
//
// The computation never fails: share rows referencing unknown items or
// people are dropped, duplicate rows sum their weights, duplicate item or
// person IDs keep the first occurrence, and NaN, infinite, or negative
// numeric inputs are treated as zero.
func ComputeTotals(items []models.Item, shares []models.ItemShare, people []models.Person, c Charges) BillTotals {
	tax := sanitize(c.Tax)
	tip := sanitize(c.Tip)

	prices, billItems := dedupeItems(items)

	index := make(map[string]int, len(people))
	billPeople := make([]models.Person, 0, len(people))
	for _, p := range people {
		if _, dup := index[p.ID]; dup {
			continue
		}
		index[p.ID] = len(billPeople)
		billPeople = append(billPeople, p)
	}

	var billSubtotal float64
	for _, it := range billItems {
		billSubtotal += prices[it.ID]
	}

	aggs := aggregateShares(shares,
		func(id string) bool { _, ok := prices[id]; return ok },
		func(id string) bool { _, ok := index[id]; return ok })

	// Raw per-person subtotals at full precision, item by item in input
	// order. Items whose weights sum to zero are skipped entirely.
	n := len(billPeople)
	rawSub := make([]float64, n)
	lines := make([][]AssignedLine, n)
	var assignedSubtotal float64
	for _, it := range billItems {
		a := aggs[it.ID]
		if a == nil || a.total <= 0 {
			continue
		}
		price := prices[it.ID]
		assignedSubtotal += price
		for _, pid := range a.order {
			i := index[pid]
			amt := price * (a.weight[pid] / a.total)
			rawSub[i] += amt
			lines[i] = append(lines[i], AssignedLine{ItemID: it.ID, Label: it.Label, Amount: amt})
		}
	}

	rawTax, allocTax := allocate(tax, c.TaxMode, rawSub, billSubtotal, assignedSubtotal, c.IncludeZeroPeople)
	rawTip, allocTip := allocate(tip, c.TipMode, rawSub, billSubtotal, assignedSubtotal, c.IncludeZeroPeople)

	subCents := roundAll(rawSub)
	taxCents := roundAll(rawTax)
	tipCents := roundAll(rawTip)

	preSum := sumCents(subCents) + sumCents(taxCents) + sumCents(tipCents)
	target := roundCents(assignedSubtotal + allocTax + allocTip)

	// Reconcile each column to its own target so column sums stay exact,
	// then pin the overall person sum to the billed total. The columns can
	// round a cent apart from their sum when allocation lands on sub-cent
	// raw values.
	reconcile(subCents, rawSub, roundCents(assignedSubtotal))
	reconcile(taxCents, rawTax, roundCents(allocTax))
	reconcile(tipCents, rawTip, roundCents(allocTip))
	settleTotal(subCents, taxCents, tipCents, rawSub, rawTax, rawTip, target)

	rec := Reconciliation{DistributedCents: target - preSum, Method: MethodNone}
	switch {
	case rec.DistributedCents > 0:
		rec.Method = MethodDistributeLargest
	case rec.DistributedCents < 0:
		rec.Method = MethodRemoveSmallest
	}

	totals := make([]PersonTotal, n)
	for i, p := range billPeople {
		totals[i] = PersonTotal{
			PersonID: p.ID,
			Name:     p.Name,
			Subtotal: dollars(subCents[i]),
			TaxShare: dollars(taxCents[i]),
			TipShare: dollars(tipCents[i]),
			Total:    dollars(subCents[i] + taxCents[i] + tipCents[i]),
			Lines:    lines[i],
		}
	}

	return BillTotals{
		Subtotal:       round2(billSubtotal),
		Tax:            round2(tax),
		Tip:            round2(tip),
		GrandTotal:     round2(billSubtotal + tax + tip),
		Unassigned:     round2(billSubtotal - assignedSubtotal),
		PersonTotals:   totals,
		Reconciliation: rec,
	}
}

// allocate divides a receipt-level charge among people per the mode.
// It returns each person's raw share and the amount actually allocated,
// which falls short of the charge when items are unassigned (proportional)
// or nobody is eligible (even).
func allocate(charge float64, mode models.SplitMode, rawSub []float64, billSubtotal, assignedSubtotal float64, includeZero bool) ([]float64, float64) {
	shares := make([]float64, len(rawSub))
	if charge == 0 || len(rawSub) == 0 {
		return shares, 0
	}
	if mode == models.SplitEven {
		eligible := 0
		for _, s := range rawSub {
			if includeZero || s > 0 {
				eligible++
			}
		}
		if eligible == 0 {
			return shares, 0
		}
		per := charge / float64(eligible)
		for i, s := range rawSub {
			if includeZero || s > 0 {
				shares[i] = per
			}
		}
		return shares, charge
	}
	// Proportional, the default. No basis for proportion when nothing was
	// itemized; the charge stays unallocated.
	if billSubtotal <= 0 {
		return shares, 0
	}
	for i, s := range rawSub {
		shares[i] = charge * (s / billSubtotal)
	}
	return shares, charge * (assignedSubtotal / billSubtotal)
}

// assignment is the aggregated share state for one item: summed weight per
// person, people in first-seen order, and the item's total weight.
type assignment struct {
	order  []string
	weight map[string]float64
	total  float64
}

// aggregateShares folds share rows into per-item assignments. Rows pointing
// at unknown items or people are dropped and do not count toward the weight
// denominator; duplicate (item, person) rows sum their weights.
func aggregateShares(shares []models.ItemShare, itemKnown, personKnown func(string) bool) map[string]*assignment {
	aggs := make(map[string]*assignment)
	for _, s := range shares {
		if !itemKnown(s.ItemID) || !personKnown(s.PersonID) {
			continue
		}
		a := aggs[s.ItemID]
		if a == nil {
			a = &assignment{weight: make(map[string]float64)}
			aggs[s.ItemID] = a
		}
		w := sanitize(s.Weight)
		if _, seen := a.weight[s.PersonID]; !seen {
			a.order = append(a.order, s.PersonID)
		}
		a.weight[s.PersonID] += w
		a.total += w
	}
	return aggs
}

func dedupeItems(items []models.Item) (map[string]float64, []models.Item) {
	prices := make(map[string]float64, len(items))
	kept := make([]models.Item, 0, len(items))
	for _, it := range items {
		if _, dup := prices[it.ID]; dup {
			continue
		}
		prices[it.ID] = sanitize(it.Price)
		kept = append(kept, it)
	}
	return prices, kept
}

// reconcile adjusts rounded cents in place until they sum to target, one
// cent at a time. Cents are added to the people whose raw values were
// closest to rounding up and removed from those closest to rounding down,
// ties broken by input order.
func reconcile(cents []int64, raw []float64, target int64) {
	if len(cents) == 0 {
		return
	}
	diff := target - sumCents(cents)
	if diff == 0 {
		return
	}
	order := remainderOrder(raw, diff > 0)
	for k := 0; diff != 0; k = (k + 1) % len(order) {
		i := order[k]
		if diff > 0 {
			cents[i]++
			diff--
		} else if cents[i] > 0 {
			cents[i]--
			diff++
		}
	}
}

// settleTotal pins the sum of every person's sub+tax+tip cents to target.
// The residual cent lands on the person's tax column, then tip, then
// subtotal; removals take the first column holding at least one cent.
func settleTotal(sub, tax, tip []int64, rawSub, rawTax, rawTip []float64, target int64) {
	if len(sub) == 0 {
		return
	}
	var sum int64
	for i := range sub {
		sum += sub[i] + tax[i] + tip[i]
	}
	diff := target - sum
	if diff == 0 {
		return
	}
	rawTotal := make([]float64, len(sub))
	for i := range rawTotal {
		rawTotal[i] = rawSub[i] + rawTax[i] + rawTip[i]
	}
	order := remainderOrder(rawTotal, diff > 0)
	for k := 0; diff != 0; k = (k + 1) % len(order) {
		i := order[k]
		if diff > 0 {
			switch {
			case rawTax[i] > 0:
				tax[i]++
			case rawTip[i] > 0:
				tip[i]++
			default:
				sub[i]++
			}
			diff--
			continue
		}
		switch {
		case tax[i] > 0:
			tax[i]--
		case tip[i] > 0:
			tip[i]--
		case sub[i] > 0:
			sub[i]--
		default:
			continue
		}
		diff++
	}
}

// remainderOrder returns person indexes sorted by the fractional cent
// remainder of raw: descending when distributing cents, ascending when
// removing them. The sort is stable so ties keep input order.
func remainderOrder(raw []float64, largestFirst bool) []int {
	rem := make([]float64, len(raw))
	for i, r := range raw {
		c := r * 100
		rem[i] = c - math.Floor(c)
	}
	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if largestFirst {
			return rem[order[a]] > rem[order[b]]
		}
		return rem[order[a]] < rem[order[b]]
	})
	return order
}

// sanitize coerces NaN, infinite, and negative numeric inputs to zero.
func sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}

// roundCents is the single rounding rule for the whole application:
// dollars to integer cents, half up.
func roundCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

func roundAll(raw []float64) []int64 {
	cents := make([]int64, len(raw))
	for i, r := range raw {
		cents[i] = roundCents(r)
	}
	return cents
}

func sumCents(cents []int64) int64 {
	var sum int64
	for _, c := range cents {
		sum += c
	}
	return sum
}

func dollars(cents int64) float64 {
	return float64(cents) / 100
}

func round2(x float64) float64 {
	return dollars(roundCents(x))
}
