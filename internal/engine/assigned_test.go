package engine

import (
	"math"
	"reflect"
	"testing"

	"splittab/internal/models"
)

func TestAssignedLines(t *testing.T) {
	tests := []struct {
		name         string
		items        []models.Item
		shares       []models.ItemShare
		validateFunc func(t *testing.T, lines map[string][]AssignedLine)
	}{
		{
			name: "weighted portions per person in item order",
			items: []models.Item{
				{ID: "i1", Label: "Pizza", Price: 12.00},
				{ID: "i2", Label: "Beer", Price: 6.00},
			},
			shares: []models.ItemShare{
				{ItemID: "i1", PersonID: "alice", Weight: 1},
				{ItemID: "i1", PersonID: "bob", Weight: 3},
				{ItemID: "i2", PersonID: "alice", Weight: 1},
			},
			validateFunc: func(t *testing.T, lines map[string][]AssignedLine) {
				want := map[string][]AssignedLine{
					"alice": {
						{ItemID: "i1", Label: "Pizza", Amount: 3.00},
						{ItemID: "i2", Label: "Beer", Amount: 6.00},
					},
					"bob": {
						{ItemID: "i1", Label: "Pizza", Amount: 9.00},
					},
				}
				if !reflect.DeepEqual(lines, want) {
					t.Errorf("lines = %+v, want %+v", lines, want)
				}
			},
		},
		{
			name: "every person id in a share row appears",
			items: []models.Item{
				{ID: "i1", Label: "Platter", Price: 6.00},
			},
			shares: []models.ItemShare{
				{ItemID: "i1", PersonID: "alice", Weight: 1},
				{ItemID: "i1", PersonID: "somebody-deleted", Weight: 1},
			},
			validateFunc: func(t *testing.T, lines map[string][]AssignedLine) {
				// No people list to validate against here, so both halves
				// show up.
				if len(lines) != 2 {
					t.Fatalf("got %d people, want 2", len(lines))
				}
				if lines["somebody-deleted"][0].Amount != 3.00 {
					t.Errorf("amount = %v, want 3.00", lines["somebody-deleted"][0].Amount)
				}
			},
		},
		{
			name: "zero weight share keeps a zero amount line",
			items: []models.Item{
				{ID: "i1", Label: "Nachos", Price: 8.00},
			},
			shares: []models.ItemShare{
				{ItemID: "i1", PersonID: "alice", Weight: 0},
				{ItemID: "i1", PersonID: "bob", Weight: 2},
			},
			validateFunc: func(t *testing.T, lines map[string][]AssignedLine) {
				if got := lines["alice"]; len(got) != 1 || got[0].Amount != 0 {
					t.Errorf("alice lines = %+v, want one zero amount line", got)
				}
				if lines["bob"][0].Amount != 8.00 {
					t.Errorf("bob amount = %v, want 8.00", lines["bob"][0].Amount)
				}
			},
		},
		{
			name: "zero total weight items are skipped",
			items: []models.Item{
				{ID: "i1", Label: "Soup", Price: 7.00},
			},
			shares: []models.ItemShare{
				{ItemID: "i1", PersonID: "alice", Weight: 0},
			},
			validateFunc: func(t *testing.T, lines map[string][]AssignedLine) {
				if len(lines) != 0 {
					t.Errorf("lines = %+v, want empty", lines)
				}
			},
		},
		{
			name: "rows for unknown items are dropped",
			items: []models.Item{
				{ID: "i1", Label: "Tea", Price: 3.00},
			},
			shares: []models.ItemShare{
				{ItemID: "gone", PersonID: "alice", Weight: 1},
			},
			validateFunc: func(t *testing.T, lines map[string][]AssignedLine) {
				if len(lines) != 0 {
					t.Errorf("lines = %+v, want empty", lines)
				}
			},
		},
		{
			name: "duplicate rows merge before normalizing",
			items: []models.Item{
				{ID: "i1", Label: "Pitcher", Price: 10.00},
			},
			shares: []models.ItemShare{
				{ItemID: "i1", PersonID: "alice", Weight: 1},
				{ItemID: "i1", PersonID: "alice", Weight: 1},
				{ItemID: "i1", PersonID: "bob", Weight: 2},
			},
			validateFunc: func(t *testing.T, lines map[string][]AssignedLine) {
				if lines["alice"][0].Amount != 5.00 {
					t.Errorf("alice amount = %v, want 5.00", lines["alice"][0].Amount)
				}
				if len(lines["alice"]) != 1 {
					t.Errorf("alice has %d lines, want 1", len(lines["alice"]))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, AssignedLines(tt.items, tt.shares))
		})
	}
}

// The breakdown and the totals computation share one normalization path, so
// summing a person's raw lines must land on the same figures ComputeTotals
// reports, down to the float.
func TestAssignedLinesMatchComputeTotals(t *testing.T) {
	items := []models.Item{
		{ID: "i1", Label: "Family Platter", Price: 41.53},
		{ID: "i2", Label: "Lemonade", Price: 3.99},
		{ID: "i3", Label: "Brownie", Price: 5.25},
	}
	shares := []models.ItemShare{
		{ItemID: "i1", PersonID: "p1", Weight: 2},
		{ItemID: "i1", PersonID: "p2", Weight: 1},
		{ItemID: "i1", PersonID: "p3", Weight: 1},
		{ItemID: "i2", PersonID: "p2", Weight: 1},
		{ItemID: "i3", PersonID: "p3", Weight: 3},
		{ItemID: "i3", PersonID: "p1", Weight: 1},
	}
	ps := []models.Person{
		{ID: "p1", Name: "Ana"}, {ID: "p2", Name: "Ben"}, {ID: "p3", Name: "Cleo"},
	}

	lines := AssignedLines(items, shares)
	totals := ComputeTotals(items, shares, ps, Charges{})

	for _, p := range totals.PersonTotals {
		if !reflect.DeepEqual(lines[p.PersonID], p.Lines) {
			t.Errorf("%s: breakdown lines %+v differ from totals lines %+v",
				p.Name, lines[p.PersonID], p.Lines)
		}
		var raw float64
		for _, l := range lines[p.PersonID] {
			raw += l.Amount
		}
		if got := dollars(roundCents(raw)); math.Abs(got-p.Subtotal) > 0.011 {
			t.Errorf("%s: rounded raw lines = %v, totals subtotal = %v", p.Name, got, p.Subtotal)
		}
	}
}
